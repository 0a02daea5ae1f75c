package network

import (
	"errors"
	"fmt"
	"net/url"
	"slices"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel network errors.
var (
	// ErrUnknownNetwork is returned by [Lookup] for a name that is neither a
	// preset nor defined in a loaded file.
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrInvalidNetwork wraps every [Network.Validate] failure.
	ErrInvalidNetwork = errors.New("invalid network")
)

type (
	// Contracts holds the addresses of the confidential-compute protocol
	// contracts a client instance is bound to.
	Contracts struct {
		ACL                       common.Address `json:"acl"`
		KMS                       common.Address `json:"kms"`
		InputVerifier             common.Address `json:"input_verifier"`
		DecryptionVerifier        common.Address `json:"decryption_verifier"`
		InputVerificationVerifier common.Address `json:"input_verification_verifier"`
	}

	// Network is the client configuration handed to the engine: the chain to
	// talk to, the relayer serving it and the protocol contracts on it.
	Network struct {
		Name           string    `json:"name"`
		RPCURL         string    `json:"rpc_url"`
		RelayerURL     string    `json:"relayer_url,omitempty"`
		Contracts      Contracts `json:"contracts"`
		ChainID        uint64    `json:"chain_id"`
		GatewayChainID uint64    `json:"gateway_chain_id,omitempty"`
	}
)

// Hardhat returns the in-process Hardhat network.
func Hardhat() Network {
	return Network{
		Name:    "hardhat",
		ChainID: 31337,
		RPCURL:  "http://127.0.0.1:8545",
	}
}

// Anvil returns a local Anvil node.
func Anvil() Network {
	return Network{
		Name:    "anvil",
		ChainID: 31337,
		RPCURL:  "http://localhost:8545",
	}
}

// Sepolia returns the Sepolia testnet together with the public relayer and
// protocol contract deployment.
func Sepolia() Network {
	return Network{
		Name:           "sepolia",
		ChainID:        11155111,
		GatewayChainID: 55815,
		RPCURL:         "https://ethereum-sepolia-rpc.publicnode.com",
		RelayerURL:     "https://relayer.testnet.zama.cloud",
		Contracts: Contracts{
			ACL:                       common.HexToAddress("0x687820221192C5B662b25367F70076A37bc79b6c"),
			KMS:                       common.HexToAddress("0x1364cBBf2cDF5032C47d8226a6f6FBD2AFCDacAC"),
			InputVerifier:             common.HexToAddress("0xbc91f3daD1A5F19F8390c400196e58073B6a0BC4"),
			DecryptionVerifier:        common.HexToAddress("0xb6E160B1ff80D67Bfe90A85eE06Ce0A2613607D1"),
			InputVerificationVerifier: common.HexToAddress("0x7048C39f048125eDa9d678AEbaDfB22F7900a29F"),
		},
	}
}

// Presets returns the built-in networks keyed by name.
func Presets() map[string]Network {
	presets := map[string]Network{}
	for _, n := range []Network{Hardhat(), Anvil(), Sepolia()} {
		presets[n.Name] = n
	}

	return presets
}

// Lookup returns the network called name. Networks in custom take precedence
// over presets of the same name.
func Lookup(name string, custom map[string]Network) (Network, error) {
	if n, ok := custom[name]; ok {
		return n, nil
	}

	if n, ok := Presets()[name]; ok {
		return n, nil
	}

	return Network{}, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
}

// Names returns the sorted names of the presets merged with custom.
func Names(custom map[string]Network) []string {
	all := Presets()
	for name, n := range custom {
		all[name] = n
	}

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Validate reports whether the network can be dialed. A network with a
// relayer must name every protocol contract.
func (n Network) Validate() error {
	var errs []error

	if n.ChainID == 0 {
		errs = append(errs, errors.New("chain_id is required"))
	}

	if err := checkURL(n.RPCURL, "http", "https", "ws", "wss"); err != nil {
		errs = append(errs, fmt.Errorf("rpc_url: %w", err))
	}

	if n.RelayerURL != "" {
		if err := checkURL(n.RelayerURL, "http", "https"); err != nil {
			errs = append(errs, fmt.Errorf("relayer_url: %w", err))
		}

		errs = append(errs, n.Contracts.missing()...)
	}

	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("%w %q: %w", ErrInvalidNetwork, n.Name, errors.Join(errs...))
}

func (c Contracts) missing() []error {
	var errs []error

	for _, field := range []struct {
		name string
		addr common.Address
	}{
		{"acl", c.ACL},
		{"kms", c.KMS},
		{"input_verifier", c.InputVerifier},
		{"decryption_verifier", c.DecryptionVerifier},
		{"input_verification_verifier", c.InputVerificationVerifier},
	} {
		if field.addr == (common.Address{}) {
			errs = append(errs, fmt.Errorf("contracts.%s is required with a relayer", field.name))
		}
	}

	return errs
}

func checkURL(raw string, schemes ...string) error {
	if raw == "" {
		return errors.New("is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return err //nolint:wrapcheck // wrapped by caller
	}

	if !slices.Contains(schemes, u.Scheme) {
		return fmt.Errorf("scheme %q not in %v", u.Scheme, schemes)
	}

	if u.Host == "" {
		return errors.New("host is required")
	}

	return nil
}
