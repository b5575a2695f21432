package configs

import _ "embed"

// AddressBook is the default FxPortal address book
//
//go:embed config.json
var AddressBook []byte
