package inventory

type Status string

const (
	StatusAvailable Status = "available"
	StatusHeld      Status = "held"
	StatusSold      Status = "sold"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusHeld, StatusSold:
		return true
	default:
		return false
	}
}

type Kind string

const (
	KindSeat        Kind = "seat"
	KindGeneralSlot Kind = "general_slot"
)

func (k Kind) String() string {
	return string(k)
}

func (k Kind) IsValid() bool {
	switch k {
	case KindSeat, KindGeneralSlot:
		return true
	default:
		return false
	}
}
