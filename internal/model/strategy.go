package model

// Autopilot strategy constants
const (
	StrategySimulated = "simulated"
	StrategySafeTurn  = "safe-turn"

	DefaultStrategy = StrategySimulated
)

// StrategyDisplayName returns a human-readable label for a strategy
func StrategyDisplayName(strategy string) string {
	switch strategy {
	case StrategySimulated:
		return "A* with trap simulation"
	case StrategySafeTurn:
		return "Greedy safe turn"
	default:
		return strategy
	}
}

// ValidStrategies returns all valid autopilot strategy names
func ValidStrategies() []string {
	return []string{StrategySimulated, StrategySafeTurn}
}
