package kind

type Kind uint8

const (
	KindNumeric Kind = iota
	KindBytes
	KindArray
	KindSwitch
)

var kindNames = [...]string{
	KindNumeric: "numeric",
	KindBytes:   "bytes",
	KindArray:   "array",
	KindSwitch:  "switch",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsComposite reports whether the kind carries child layouts.
func (k Kind) IsComposite() bool {
	return k != KindNumeric
}
