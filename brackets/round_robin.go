package brackets

import (
	"fmt"
	"math/rand"
)

// GenerateRoundRobin строит полный круговой турнир: каждая пара участников
// встречается ровно один раз, всего C(n, 2) матчей. Перед обходом пар порядок
// участников перемешивается (Fisher–Yates); на множество пар это не влияет,
// меняется только порядок номеров матчей. Все матчи получают Round = 1 —
// это полный круг, а не расписание по турам.
func GenerateRoundRobin(entityIDs []int, rng *rand.Rand) ([]PlannedMatch, error) {
	n := len(entityIDs)
	if n < 2 {
		return nil, fmt.Errorf("round robin: not enough participants (found %d, min 2 required)", n)
	}

	shuffled := make([]int, n)
	copy(shuffled, entityIDs)
	swap := func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] }
	if rng != nil {
		rng.Shuffle(n, swap)
	} else {
		rand.Shuffle(n, swap)
	}

	matches := make([]PlannedMatch, 0, n*(n-1)/2)
	matchNumber := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			matchNumber++
			s1 := shuffled[i]
			s2 := shuffled[j]
			matches = append(matches, PlannedMatch{
				MatchNumber: matchNumber,
				Round:       1,
				Side1:       &s1,
				Side2:       &s2,
			})
		}
	}
	return matches, nil
}
