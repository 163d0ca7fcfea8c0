package sqlexec

import "iter"

// BindFunc assigns one named value onto a record under construction.
// The mapper calls it once per field, in the declared field order, with
// the row value at that position. It is the explicit replacement for
// reflective column-name matching: the caller states both the order and
// the assignment.
type BindFunc[T any] func(rec *T, field string, value any) error

// MapBatches lazily converts a batch sequence into batches of
// caller-shaped records. fieldOrder must match the row width of every
// batch; a mismatch ends the sequence with a *MappingError, leaving
// previously yielded record batches valid. The transform is pure: it
// inherits the source sequence's laziness and finiteness, holds no
// connection state of its own, and stops consuming the source as soon as
// the caller stops consuming it.
//
//	type user struct {
//	    ID   int64
//	    Name string
//	}
//
//	records := sqlexec.MapBatches(batches, []string{"id", "name"},
//	    func(u *user, field string, v any) error {
//	        switch field {
//	        case "id":
//	            u.ID = v.(int64)
//	        case "name":
//	            u.Name = v.(string)
//	        }
//	        return nil
//	    })
func MapBatches[T any](batches iter.Seq2[Batch, error], fieldOrder []string, bind BindFunc[T]) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		for batch, err := range batches {
			if err != nil {
				yield(nil, err)
				return
			}
			records := make([]T, 0, len(batch.Rows))
			for _, row := range batch.Rows {
				if len(row) != len(fieldOrder) {
					yield(nil, &MappingError{Want: len(fieldOrder), Got: len(row)})
					return
				}
				var rec T
				for i, field := range fieldOrder {
					if berr := bind(&rec, field, row[i]); berr != nil {
						yield(nil, berr)
						return
					}
				}
				records = append(records, rec)
			}
			if !yield(records, nil) {
				return
			}
		}
	}
}
