package domain

// ReadingScore is the full per-reading scoring breakdown. The scorer reports
// one to its observer for every reading it scores, in chronological order.
type ReadingScore struct {
	Index   int
	Reading Reading

	TempZ         float64
	SmokeZ        float64
	TempSeverity  float64
	SmokeSeverity float64
	TempDamping   float64
	SmokeDamping  float64
	WindScore     float64
	Risk          float64
	Emitted       bool
}

// ScoreObserver receives the intermediate statistics behind each risk score.
// The scorer itself never prints or logs; diagnostic output is entirely the
// observer's concern. Calls are synchronous, so implementations must not
// block.
type ScoreObserver interface {
	ObserveScore(ReadingScore)
}
