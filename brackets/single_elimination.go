package brackets

import (
	"fmt"
	"math"
)

// GenerateSingleElimination строит сетку на вылет по посеву (лучший первым).
// Первый раунд: посев i играет с посевом n-1-i (классическое 1-vs-N, 2-vs-(N-1)).
// При нечётном числе посевов средний проходит дальше без игры. Матчи поздних
// раундов создаются заготовками с пустыми сторонами; продвижение победителей
// выполняется вручную организатором, генератор его не реализует.
// Всего раундов ceil(log2(n)), всего матчей n-1.
func GenerateSingleElimination(seededIDs []int, startNumber int) ([]PlannedMatch, int, error) {
	n := len(seededIDs)
	if n < 2 {
		return nil, 0, fmt.Errorf("single elimination: not enough seeds (found %d, min 2 required)", n)
	}

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	matches := make([]PlannedMatch, 0, n-1)
	matchNumber := startNumber

	// Первый раунд: реальные пары по посеву.
	for i := 0; i < n/2; i++ {
		matchNumber++
		s1 := seededIDs[i]
		s2 := seededIDs[n-1-i]
		matches = append(matches, PlannedMatch{
			MatchNumber: matchNumber,
			Round:       1,
			Side1:       &s1,
			Side2:       &s2,
		})
	}

	// Число выходящих из первого раунда: победители пар плюс средний посев
	// при нечётном n.
	advancing := n/2 + n%2

	for round := 2; round <= numRounds; round++ {
		matchesInRound := advancing / 2
		byes := advancing % 2
		for i := 0; i < matchesInRound; i++ {
			matchNumber++
			matches = append(matches, PlannedMatch{
				MatchNumber: matchNumber,
				Round:       round,
				Placeholder: true,
			})
		}
		advancing = matchesInRound + byes
	}

	return matches, numRounds, nil
}
