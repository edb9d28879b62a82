package exporteddoc

func Exported() {} // want "exported function Exported should have a doc comment"

// Documented is fine.
func Documented() {}

func unexported() {}

type T struct{}

func (T) Method() {} // want "exported method Method should have a doc comment"

type hidden struct{}

func (hidden) Method() {}

var _ = unexported
