package autopilot

import (
	"sort"

	"github.com/gammazero/deque"
	"github.com/zyedidia/generic/mapset"

	"github.com/mcoot/autosnake/internal/dependencies/random"
	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/services/pathfinding"
)

const (
	exactMatchBonus = 100 // Direction points straight at food along its axis
	majorAxisBonus  = 50  // Direction lies on the axis with the larger gap
	jitterRange     = 10

	// Above this length the strategy stops chasing food and walks into the
	// nearest free space instead
	systematicLength = 20
)

// turnOrder lists the directions tried from each heading, before ranking.
// The heading itself is never a candidate.
var turnOrder = map[model.Direction][]model.Direction{
	model.DirectionUp:    {model.DirectionRight, model.DirectionLeft, model.DirectionDown},
	model.DirectionDown:  {model.DirectionLeft, model.DirectionRight, model.DirectionUp},
	model.DirectionLeft:  {model.DirectionUp, model.DirectionDown, model.DirectionRight},
	model.DirectionRight: {model.DirectionDown, model.DirectionUp, model.DirectionLeft},
}

// searchOrder is the neighbour order of the free-space search
var searchOrder = []model.Direction{
	model.DirectionLeft,
	model.DirectionRight,
	model.DirectionUp,
	model.DirectionDown,
}

// SafeTurnStrategy greedily heads for food, only checking that the very next
// cell is free. Once the snake is long it switches to filling the nearest free
// space. It can trap itself.
type SafeTurnStrategy struct {
	random random.Random
}

// NewSafeTurnStrategy creates a new SafeTurnStrategy
func NewSafeTurnStrategy(rnd random.Random) *SafeTurnStrategy {
	return &SafeTurnStrategy{random: rnd}
}

// Name returns the strategy identifier
func (s *SafeTurnStrategy) Name() string {
	return model.StrategySafeTurn
}

// NextDirection walks toward the nearest free cell when the body is longer
// than systematicLength, and otherwise turns toward food
func (s *SafeTurnStrategy) NextDirection(view View) model.Direction {
	if len(view.Body) > systematicLength {
		if d, ok := s.systematicDirection(view); ok {
			return d
		}
	}
	return s.safeTurnDirection(view)
}

// safeTurnDirection tries, in order: the major-axis direction toward food
// unless it is the heading, the turns for the heading ranked by food
// alignment plus jitter, any other safe direction but the heading, and
// finally the heading
func (s *SafeTurnStrategy) safeTurnDirection(view View) model.Direction {
	head := view.Head()

	if view.HasFood {
		if d := majorAxisDirection(head, view.Food); d != view.Heading && view.safe(d) {
			return d
		}
	}

	type ranked struct {
		dir      model.Direction
		priority int
	}
	var candidates []ranked
	for _, d := range turnOrder[view.Heading] {
		candidates = append(candidates, ranked{dir: d, priority: s.priority(d, head, view)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].priority < candidates[j].priority
	})
	for _, c := range candidates {
		if view.safe(c.dir) {
			return c.dir
		}
	}

	for _, d := range model.Directions() {
		if d != view.Heading && view.safe(d) {
			return d
		}
	}
	return view.Heading
}

// systematicDirection returns the first step of the shortest path to the
// free cell nearest the head
func (s *SafeTurnStrategy) systematicDirection(view View) (model.Direction, bool) {
	head := view.Head()
	target, ok := nearestFreeCell(view)
	if !ok {
		return "", false
	}
	path, ok := pathfinding.New(view.Grid).FindPath(head, target, view.Occupied)
	if !ok || len(path) < 2 {
		return "", false
	}
	return model.DirectionBetween(path[0], path[1])
}

// nearestFreeCell runs a breadth-first search from the head over free cells.
// The tail counts as occupied since moving onto it is a collision.
func nearestFreeCell(view View) (model.Cell, bool) {
	head := view.Head()
	visited := mapset.New[model.Cell]()
	visited.Put(head)

	var queue deque.Deque[model.Cell]
	queue.PushBack(head)
	for queue.Len() > 0 {
		current := queue.PopFront()
		if current != head {
			return current, true
		}
		for _, d := range searchOrder {
			next := view.Grid.Shift(current, d)
			if !view.Grid.Contains(next) || visited.Has(next) || view.Occupied.Has(next) {
				continue
			}
			visited.Put(next)
			queue.PushBack(next)
		}
	}
	return model.Cell{}, false
}

// priority ranks d for the snake at head; lower is better
func (s *SafeTurnStrategy) priority(d model.Direction, head model.Cell, view View) int {
	priority := s.random.Intn(jitterRange)
	if !view.HasFood {
		return priority
	}

	dx, dy := view.Food.X-head.X, view.Food.Y-head.Y
	if (d == model.DirectionRight && dx > 0) ||
		(d == model.DirectionLeft && dx < 0) ||
		(d == model.DirectionDown && dy > 0) ||
		(d == model.DirectionUp && dy < 0) {
		priority -= exactMatchBonus
	}

	horizontal := d == model.DirectionLeft || d == model.DirectionRight
	if horizontal && abs(dx) > abs(dy) || !horizontal && abs(dy) > abs(dx) {
		priority -= majorAxisBonus
	}
	return priority
}

// majorAxisDirection points from head toward food along the axis with the
// larger gap, preferring vertical on a tie
func majorAxisDirection(head, food model.Cell) model.Direction {
	dx, dy := food.X-head.X, food.Y-head.Y
	if abs(dx) > abs(dy) {
		if dx > 0 {
			return model.DirectionRight
		}
		return model.DirectionLeft
	}
	if dy > 0 {
		return model.DirectionDown
	}
	return model.DirectionUp
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
