package trigger

import "fmt"

// Type represents a trigger type used in the N3 VM, it's reported in
// application logs for every execution.
type Type byte

// Viable list of supported trigger type constants.
const (
	// OnPersist is a trigger type that indicates that the script is being
	// invoked internally by the system during block persistence (before
	// transaction processing).
	OnPersist Type = 0x01

	// PostPersist is a trigger type that indicates that the script is being
	// invoked by the system after block persistence (transaction processing)
	// has finished.
	PostPersist Type = 0x02

	// Verification indicates that the contract is being invoked as a
	// verification function. It returns a boolean value that indicates the
	// validity of the transaction or block.
	Verification Type = 0x20

	// Application indicates that the contract is being invoked as an
	// application function, it can change the state of the chain and
	// return any type of value.
	Application Type = 0x40

	// All represents any trigger type.
	All Type = OnPersist | PostPersist | Verification | Application
)

var triggerNames = map[Type]string{
	OnPersist:    "OnPersist",
	PostPersist:  "PostPersist",
	Verification: "Verification",
	Application:  "Application",
	All:          "All",
}

// String implements the fmt.Stringer interface.
func (t Type) String() string {
	if s, ok := triggerNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", byte(t))
}

// FromString converts a string to the trigger Type.
func FromString(str string) (Type, error) {
	for t, s := range triggerNames {
		if s == str {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown trigger type: %s", str)
}
