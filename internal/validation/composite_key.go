package validation

// FieldAccessor exposes named string fields of a record.
type FieldAccessor interface {
	Get(field string) string
	Set(field, value string)
}

// DeriveCompositeKey writes "<fieldA>_<fieldB>" into target on every record.
func DeriveCompositeKey[R FieldAccessor](records []R, fieldA, fieldB, target string) {
	for _, r := range records {
		r.Set(target, r.Get(fieldA)+"_"+r.Get(fieldB))
	}
}
