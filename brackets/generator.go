package brackets

// PlannedMatch — матч, построенный генератором до сохранения в БД.
// Side1/Side2 содержат идентификаторы сторон (команд или игроков);
// у заготовок поздних раундов сетки обе стороны nil.
type PlannedMatch struct {
	MatchNumber int
	Round       int
	Side1       *int
	Side2       *int
	Placeholder bool
}

// Pair возвращает неупорядоченную пару сторон матча (меньший id первым).
// Используется в тестах и проверках уникальности пар.
func (m PlannedMatch) Pair() (int, int, bool) {
	if m.Side1 == nil || m.Side2 == nil {
		return 0, 0, false
	}
	a, b := *m.Side1, *m.Side2
	if a > b {
		a, b = b, a
	}
	return a, b, true
}
