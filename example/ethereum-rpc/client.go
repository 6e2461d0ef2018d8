package main

import (
	"context"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/mnehpets/oneclient/endpoint"
	"github.com/mnehpets/oneclient/jsonrpc"
	"github.com/mnehpets/oneclient/provider"
)

// Client is a small typed Ethereum client.
type Client struct {
	p     *provider.Provider[EthRPC]
	chunk int
}

// Options configure a Client.
type Options struct {
	// Node replaces DefaultNode when set.
	Node string
	// JWTSecret, if set, signs every request like the engine API expects.
	JWTSecret []byte
	// ChunkSize bounds the number of calls per HTTP request in batches.
	ChunkSize int
	Timeout   time.Duration
}

func NewClient(transport provider.Transport, opts Options) *Client {
	var endpointFn provider.EndpointFunc[EthRPC]
	if opts.Node != "" {
		node := opts.Node
		endpointFn = func(EthRPC) string { return node }
	}
	var builderFn provider.BuilderFunc[EthRPC]
	if len(opts.JWTSecret) > 0 {
		auth := endpoint.JWT{Secret: opts.JWTSecret, TTL: time.Minute}
		builderFn = func(req *http.Request, _ EthRPC) error {
			return auth.Apply(req.Header)
		}
	}
	p := provider.New[EthRPC](transport, endpointFn, builderFn)
	p.Timeout = opts.Timeout

	chunk := opts.ChunkSize
	if chunk < 1 {
		chunk = 100
	}
	return &Client{p: p, chunk: chunk}
}

func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	resp, err := jsonrpc.Call[hexutil.Uint64](ctx, c.p, ChainID())
	if err != nil {
		return 0, err
	}
	return uint64(resp.Result), nil
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	resp, err := jsonrpc.Call[hexutil.Uint64](ctx, c.p, BlockNumber())
	if err != nil {
		return 0, err
	}
	return uint64(resp.Result), nil
}

func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	resp, err := jsonrpc.Call[hexutil.Big](ctx, c.p, GasPrice())
	if err != nil {
		return nil, err
	}
	return resp.Result.ToInt(), nil
}

func (c *Client) Nonce(ctx context.Context, addr common.Address, block string) (uint64, error) {
	resp, err := jsonrpc.Call[hexutil.Uint64](ctx, c.p, GetTransactionCount(addr, block))
	if err != nil {
		return 0, err
	}
	return uint64(resp.Result), nil
}

func (c *Client) SendRawTransaction(ctx context.Context, tx []byte) (common.Hash, error) {
	resp, err := jsonrpc.Call[common.Hash](ctx, c.p, SendRawTransaction(tx))
	if err != nil {
		return common.Hash{}, err
	}
	return resp.Result, nil
}

// Balances fetches the balance of every address at block in one logical
// batch. The first JSON-RPC error reported for any address is returned.
func (c *Client) Balances(ctx context.Context, addrs []common.Address, block string) ([]*big.Int, error) {
	calls := make([]EthRPC, 0, len(addrs))
	for _, addr := range addrs {
		calls = append(calls, GetBalance(addr, block))
	}
	resps, err := jsonrpc.BatchChunked[hexutil.Big](ctx, c.p, calls, c.chunk)
	if err != nil {
		return nil, err
	}
	balances := make([]*big.Int, 0, len(resps))
	for _, resp := range resps {
		if resp.Error != nil {
			return nil, resp.Error
		}
		balances = append(balances, resp.Result.ToInt())
	}
	return balances, nil
}
