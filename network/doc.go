// Package network describes the chains a confidential-compute client can be
// bound to and provides a warmup engine that connects to them.
//
// A Network carries the RPC endpoint, chain id, relayer URL and protocol
// contract addresses. Presets mirror the networks of the companion contract
// project (hardhat, anvil, sepolia); further networks load from JSON or YAML
// files. Engine dials a network and verifies its chain id before handing out
// an Endpoint.
package network
