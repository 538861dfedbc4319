package knowledge

// Observer receives inference events. Implementations must be cheap;
// they are called from inside AddKnowledge.
type Observer interface {
	RoundCompleted()
	SentenceDerived()
	CellResolved(mine bool)
	Contradiction()
}

type nopObserver struct{}

func (nopObserver) RoundCompleted()   {}
func (nopObserver) SentenceDerived()  {}
func (nopObserver) CellResolved(bool) {}
func (nopObserver) Contradiction()    {}
