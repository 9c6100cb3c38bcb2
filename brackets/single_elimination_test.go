package brackets

import "testing"

func TestGenerateSingleEliminationEightSeeds(t *testing.T) {
	seeds := []int{101, 102, 103, 104, 105, 106, 107, 108} // лучший посев первым

	matches, rounds, err := GenerateSingleElimination(seeds, 0)
	if err != nil {
		t.Fatalf("GenerateSingleElimination() error = %v", err)
	}

	if rounds != 3 {
		t.Errorf("rounds = %d, want 3", rounds)
	}
	if len(matches) != 7 {
		t.Fatalf("total matches = %d, want 7", len(matches))
	}

	// Классический посев первого раунда: 1-8, 2-7, 3-6, 4-5.
	wantPairs := [][2]int{{101, 108}, {102, 107}, {103, 106}, {104, 105}}
	for i, want := range wantPairs {
		m := matches[i]
		if m.Round != 1 {
			t.Fatalf("match %d: round = %d, want 1", i, m.Round)
		}
		if m.Side1 == nil || m.Side2 == nil {
			t.Fatalf("round 1 match %d has empty side", i)
		}
		if *m.Side1 != want[0] || *m.Side2 != want[1] {
			t.Errorf("round 1 match %d: got %d vs %d, want %d vs %d",
				i, *m.Side1, *m.Side2, want[0], want[1])
		}
	}

	// Поздние раунды — заготовки без сторон: 2 матча во втором, 1 в третьем.
	perRound := map[int]int{}
	for _, m := range matches[4:] {
		if !m.Placeholder {
			t.Errorf("match %d in round %d should be a placeholder", m.MatchNumber, m.Round)
		}
		if m.Side1 != nil || m.Side2 != nil {
			t.Errorf("placeholder match %d has sides set", m.MatchNumber)
		}
		perRound[m.Round]++
	}
	if perRound[2] != 2 || perRound[3] != 1 {
		t.Errorf("later rounds layout = %v, want map[2:2 3:1]", perRound)
	}
}

func TestGenerateSingleEliminationCounts(t *testing.T) {
	tests := []struct {
		seeds      int
		wantRounds int
	}{
		{seeds: 2, wantRounds: 1},
		{seeds: 3, wantRounds: 2},
		{seeds: 4, wantRounds: 2},
		{seeds: 6, wantRounds: 3},
		{seeds: 16, wantRounds: 4},
	}

	for _, tt := range tests {
		ids := make([]int, tt.seeds)
		for i := range ids {
			ids[i] = i + 1
		}
		matches, rounds, err := GenerateSingleElimination(ids, 0)
		if err != nil {
			t.Fatalf("seeds=%d: error = %v", tt.seeds, err)
		}
		if rounds != tt.wantRounds {
			t.Errorf("seeds=%d: rounds = %d, want %d", tt.seeds, rounds, tt.wantRounds)
		}
		// На вылет всегда n-1 матчей: каждый матч выбивает ровно одного.
		if len(matches) != tt.seeds-1 {
			t.Errorf("seeds=%d: total matches = %d, want %d", tt.seeds, len(matches), tt.seeds-1)
		}
	}
}

func TestGenerateSingleEliminationMatchNumbersContinue(t *testing.T) {
	// Номера матчей сетки продолжают счётчик квалификации.
	matches, _, err := GenerateSingleElimination([]int{1, 2, 3, 4}, 6)
	if err != nil {
		t.Fatalf("GenerateSingleElimination() error = %v", err)
	}
	for i, m := range matches {
		if m.MatchNumber != 7+i {
			t.Errorf("match at index %d has number %d, want %d", i, m.MatchNumber, 7+i)
		}
	}
}

func TestGenerateSingleEliminationNotEnoughSeeds(t *testing.T) {
	if _, _, err := GenerateSingleElimination([]int{1}, 0); err == nil {
		t.Error("expected error for a single seed, got nil")
	}
}
