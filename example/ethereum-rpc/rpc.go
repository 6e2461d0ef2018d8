package main

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/mnehpets/oneclient/endpoint"
)

// DefaultNode is used when no node URL is configured.
const DefaultNode = "https://cloudflare-eth.com"

// EthRPC is one Ethereum JSON-RPC method with its arguments. Values are
// created with the constructors below.
type EthRPC struct {
	endpoint.Defaults
	name string
	args []any
}

func ChainID() EthRPC     { return EthRPC{name: "eth_chainId"} }
func GasPrice() EthRPC    { return EthRPC{name: "eth_gasPrice"} }
func BlockNumber() EthRPC { return EthRPC{name: "eth_blockNumber"} }

func GetBalance(addr common.Address, block string) EthRPC {
	return EthRPC{name: "eth_getBalance", args: []any{addr, block}}
}

func GetTransactionCount(addr common.Address, block string) EthRPC {
	return EthRPC{name: "eth_getTransactionCount", args: []any{addr, block}}
}

func SendRawTransaction(tx hexutil.Bytes) EthRPC {
	return EthRPC{name: "eth_sendRawTransaction", args: []any{tx}}
}

func (EthRPC) BaseURL() string         { return DefaultNode }
func (EthRPC) Method() endpoint.Method { return endpoint.POST }
func (EthRPC) Path() string            { return "" }
func (e EthRPC) MethodName() string    { return e.name }
func (e EthRPC) Params() []any         { return e.args }

func (EthRPC) Headers() map[string]string {
	return map[string]string{"Accept": endpoint.ContentTypeJSON}
}
