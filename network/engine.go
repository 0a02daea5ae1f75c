package network

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/byte4ever/warmup"
)

// Sentinel engine errors.
var (
	// ErrChainMismatch is returned when the endpoint serves another chain
	// than the network declares.
	ErrChainMismatch = errors.New("chain id mismatch")
	// ErrNoDialer is returned by Bootstrap when the engine has no dialer.
	ErrNoDialer = errors.New("no rpc dialer")
)

// DialFunc opens an RPC connection.
type DialFunc func(ctx context.Context, rawURL string) (*rpc.Client, error)

// Endpoint is a connection to a network whose chain id has been verified.
type Endpoint struct {
	client  *ethclient.Client
	chainID *big.Int
	network Network
}

// Network returns the configuration the endpoint was built from.
func (e *Endpoint) Network() Network { return e.network }

// ChainID returns the chain id reported by the node.
func (e *Endpoint) ChainID() *big.Int { return new(big.Int).Set(e.chainID) }

// Client returns the underlying Ethereum client.
func (e *Endpoint) Client() *ethclient.Client { return e.client }

// Close closes the connection. It is safe to call on a nil Endpoint.
func (e *Endpoint) Close() {
	if e == nil || e.client == nil {
		return
	}

	e.client.Close()
}

// Engine connects to a [Network]'s RPC endpoint. It implements
// warmup.Engine[Network, *Endpoint].
type Engine struct {
	dial DialFunc
}

var _ warmup.Engine[Network, *Endpoint] = (*Engine)(nil)

// NewEngine returns an engine dialing with dial, or with [rpc.DialContext]
// when dial is nil.
func NewEngine(dial DialFunc) *Engine {
	if dial == nil {
		dial = rpc.DialContext
	}

	return &Engine{dial: dial}
}

// Bootstrap checks the engine can dial. The RPC transport needs no
// process-wide setup, so there is nothing else to prepare.
func (e *Engine) Bootstrap(ctx context.Context) error {
	if e == nil || e.dial == nil {
		return ErrNoDialer
	}

	return ctx.Err() //nolint:wrapcheck // preserving context error identity
}

// Construct validates n, dials its RPC endpoint and checks the node serves
// n's chain.
func (e *Engine) Construct(ctx context.Context, n Network) (*Endpoint, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	rc, err := e.dial(ctx, n.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", n.RPCURL, err)
	}

	client := ethclient.NewClient(rc)

	id, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("eth_chainId: %w", err)
	}

	if !id.IsUint64() || id.Uint64() != n.ChainID {
		client.Close()
		return nil, fmt.Errorf("%w: %s serves %s, want %d", ErrChainMismatch, n.Name, id, n.ChainID)
	}

	return &Endpoint{client: client, chainID: id, network: n}, nil
}

// Release closes an endpoint. Pass it to warmup.WithRelease.
func Release(e *Endpoint) { e.Close() }
