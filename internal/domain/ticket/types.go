package ticket

type RedemptionStatus string

const (
	StatusIssued   RedemptionStatus = "issued"
	StatusRedeemed RedemptionStatus = "redeemed"
	StatusVoid     RedemptionStatus = "void"
)

func (s RedemptionStatus) String() string {
	return string(s)
}

func (s RedemptionStatus) IsValid() bool {
	switch s {
	case StatusIssued, StatusRedeemed, StatusVoid:
		return true
	default:
		return false
	}
}
