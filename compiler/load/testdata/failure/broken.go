package failure

//derive:builder
type Broken struct {
	Name string
