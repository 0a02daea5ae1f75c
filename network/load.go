package network

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

type (
	// file is the top-level network document.
	file struct {
		Networks map[string]entry `json:"networks" yaml:"networks"`
	}

	// entry is the on-disk form of a Network. Addresses are hex strings and
	// URLs may reference environment variables as ${NAME}.
	entry struct {
		Contracts      map[string]string `json:"contracts,omitempty" yaml:"contracts,omitempty"`
		RPCURL         string            `json:"rpc_url" yaml:"rpc_url"`
		RelayerURL     string            `json:"relayer_url,omitempty" yaml:"relayer_url,omitempty"`
		ChainID        uint64            `json:"chain_id" yaml:"chain_id"`
		GatewayChainID uint64            `json:"gateway_chain_id,omitempty" yaml:"gateway_chain_id,omitempty"`
	}
)

// Load reads network definitions from a JSON or YAML file (chosen by the
// .yaml or .yml extension). Every network is validated.
func Load(path string) (map[string]Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("network: read %s: %w", path, err)
	}

	var f file

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		err = json.Unmarshal(data, &f)
	}

	if err != nil {
		return nil, fmt.Errorf("network: parse %s: %w", path, err)
	}

	networks := make(map[string]Network, len(f.Networks))

	for name, e := range f.Networks {
		n, convErr := e.network(name)
		if convErr != nil {
			return nil, fmt.Errorf("network: %q: %w", name, convErr)
		}

		if err = n.Validate(); err != nil {
			return nil, fmt.Errorf("network: %w", err)
		}

		networks[name] = n
	}

	return networks, nil
}

func (e entry) network(name string) (Network, error) {
	n := Network{
		Name:           name,
		ChainID:        e.ChainID,
		GatewayChainID: e.GatewayChainID,
		RPCURL:         os.ExpandEnv(e.RPCURL),
		RelayerURL:     os.ExpandEnv(e.RelayerURL),
	}

	targets := map[string]*common.Address{
		"acl":                         &n.Contracts.ACL,
		"kms":                         &n.Contracts.KMS,
		"input_verifier":              &n.Contracts.InputVerifier,
		"decryption_verifier":         &n.Contracts.DecryptionVerifier,
		"input_verification_verifier": &n.Contracts.InputVerificationVerifier,
	}

	for key, hex := range e.Contracts {
		target, ok := targets[key]
		if !ok {
			return Network{}, fmt.Errorf("unknown contract %q", key)
		}

		if !common.IsHexAddress(hex) {
			return Network{}, fmt.Errorf("contract %q: invalid address %q", key, hex)
		}

		*target = common.HexToAddress(hex)
	}

	return n, nil
}
