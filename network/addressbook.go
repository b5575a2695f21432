package network

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/configs"
)

// Address book entry names
const (
	FxRoot            = "fxRoot"
	CheckpointManager = "checkpointManager"
	FxChild           = "fxChild"
	FxBridge          = "fxBridge"
	FxERC20           = "fxERC20"
)

// Entry is a single contract entry of the address book
type Entry struct {
	Address string `json:"address"`
}

// AddressBook maps a network class (mainnet, testnet) to its well known contracts
type AddressBook map[Class]map[string]Entry

// DefaultAddressBook returns the address book embedded in the binary
func DefaultAddressBook() (AddressBook, error) {
	return ParseAddressBook(configs.AddressBook)
}

// LoadAddressBook reads the address book from the given file,
// or returns the default one when the path is empty
func LoadAddressBook(path string) (AddressBook, error) {
	if path == "" {
		return DefaultAddressBook()
	}

	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read address book: %w", err)
	}

	return ParseAddressBook(raw)
}

func ParseAddressBook(raw []byte) (AddressBook, error) {
	var book AddressBook
	if err := json.Unmarshal(raw, &book); err != nil {
		return nil, fmt.Errorf("failed to decode address book: %w", err)
	}

	return book, nil
}

// Lookup returns the address of the named entry for the class.
// Missing or empty entries resolve to the zero address.
func (b AddressBook) Lookup(class Class, name string) (ethgo.Address, error) {
	entry, ok := b[class][name]
	if !ok || entry.Address == "" {
		return ethgo.ZeroAddress, nil
	}

	return parseAddress(name, entry.Address)
}
