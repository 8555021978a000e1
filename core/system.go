package core

// System stores process-wide deployment information.
type System struct {
	// CustodyID is the account holding engine custody of pulled tokens.
	CustodyID string
	Genesis   int64
	Location  string
	Version   string
}
