package ports

// IDGenerator produces identifiers for notifications and charges.
type IDGenerator interface {
	Generate() string
}
