package cart

type State string

const (
	StateOpen   State = "open"
	StateLocked State = "locked"
	StateClosed State = "closed"
)

func (s State) String() string { return string(s) }

type ItemState string

const (
	ItemStateOpen   ItemState = "open"
	ItemStateLocked ItemState = "locked"
	ItemStateClosed ItemState = "closed"
)

func (s ItemState) String() string { return string(s) }
