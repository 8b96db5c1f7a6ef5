package page

// Outcome is the tagged result of running one unit: finished records
// to stream to the sink, further units to schedule, or a mix produced
// by a listing page whose items split between the two.
type Outcome struct {
	Records []Record
	Next    []*Unit
}

// Emit builds an outcome of finished records.
func Emit(recs ...Record) Outcome {
	return Outcome{Records: recs}
}

// Continue builds an outcome of continuation units.
func Continue(units ...*Unit) Outcome {
	return Outcome{Next: units}
}

func (o Outcome) Empty() bool {
	return len(o.Records) == 0 && len(o.Next) == 0
}

func (o *Outcome) extend(other Outcome) {
	o.Records = append(o.Records, other.Records...)
	o.Next = append(o.Next, other.Next...)
}
