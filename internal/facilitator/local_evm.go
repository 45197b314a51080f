package facilitator

// LocalEVM is a self-hosted facilitator that performs real EIP-3009
// transferWithAuthorization verification and on-chain settlement, without
// depending on any external facilitator service.
//
// Adapted near-verbatim from the teacher's x402/local_facilitator.go: the
// EIP-712 domain/authorization hashing and the manual ABI encoding of
// transferWithAuthorization are unchanged math, just retargeted from the
// teacher's single-resource RPC-credit gateway onto this gateway's
// PaymentPayload/Requirements types. It is never the default facilitator
// (spec §1's "not a payment facilitator" non-goal holds for InProcess); it
// exists so a production deployment that wants real settlement has a home
// for it behind the same Client interface.

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	gethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/a2a402/gateway/internal/message"
	"github.com/a2a402/gateway/internal/payment"
)

var (
	domainTypeHash = crypto.Keccak256Hash([]byte(
		"EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)",
	))
	authTypeHash = crypto.Keccak256Hash([]byte(
		"TransferWithAuthorization(address from,address to,uint256 value,uint256 validAfter,uint256 validBefore,bytes32 nonce)",
	))
)

var transferWithAuthSig = crypto.Keccak256([]byte(
	"transferWithAuthorization(address,address,uint256,uint256,uint256,bytes32,uint8,bytes32,bytes32)",
))[:4]

// authorization is the EIP-3009 payload a client signs, carried as JSON text
// in message.PaymentPayload.Payload.
type authorization struct {
	Signature     string `json:"signature"`
	From          string `json:"from"`
	To            string `json:"to"`
	Value         string `json:"value"`
	ValidAfter    string `json:"validAfter"`
	ValidBefore   string `json:"validBefore"`
	Nonce         string `json:"nonce"`
	DomainName    string `json:"domainName"`
	DomainVersion string `json:"domainVersion"`
}

func parseAuthorization(raw string) (*authorization, error) {
	var a authorization
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, fmt.Errorf("parsing payment payload: %w", err)
	}
	return &a, nil
}

// LocalEVM implements Client using a relayer key to pay gas for settlement.
type LocalEVM struct {
	rpcURL     string
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewLocalEVM creates a LocalEVM facilitator.
//   - rpcURL: JSON-RPC endpoint of the settlement chain.
//   - privateKeyHex: hex-encoded private key of the relayer wallet (pays gas).
func NewLocalEVM(rpcURL, privateKeyHex string) (*LocalEVM, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid gateway private key: %w", err)
	}
	return &LocalEVM{
		rpcURL:     rpcURL,
		privateKey: key,
		address:    crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address returns the relayer's address (logged at startup).
func (f *LocalEVM) Address() common.Address { return f.address }

func pad32(n *big.Int) []byte {
	b := n.Bytes()
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	padded := make([]byte, 32)
	copy(padded[32-len(b):], b)
	return padded
}

func addrPad(a common.Address) []byte {
	padded := make([]byte, 32)
	copy(padded[12:], a.Bytes())
	return padded
}

func domainSeparator(name, version string, chainID *big.Int, contract common.Address) common.Hash {
	enc := make([]byte, 5*32)
	copy(enc[0:32], domainTypeHash.Bytes())
	copy(enc[32:64], crypto.Keccak256([]byte(name)))
	copy(enc[64:96], crypto.Keccak256([]byte(version)))
	copy(enc[96:128], pad32(chainID))
	copy(enc[128:160], addrPad(contract))
	return crypto.Keccak256Hash(enc)
}

func authHash(from, to common.Address, value, validAfter, validBefore *big.Int, nonce [32]byte) common.Hash {
	enc := make([]byte, 7*32)
	copy(enc[0:32], authTypeHash.Bytes())
	copy(enc[32:64], addrPad(from))
	copy(enc[64:96], addrPad(to))
	copy(enc[96:128], pad32(value))
	copy(enc[128:160], pad32(validAfter))
	copy(enc[160:192], pad32(validBefore))
	copy(enc[192:224], nonce[:])
	return crypto.Keccak256Hash(enc)
}

func mustBI(s string) *big.Int {
	n := new(big.Int)
	n.SetString(s, 10)
	return n
}

func eip712Digest(a *authorization, chainID *big.Int, assetAddress string) (common.Hash, [32]byte, error) {
	assetAddr := common.HexToAddress(assetAddress)
	from := common.HexToAddress(a.From)
	to := common.HexToAddress(a.To)
	value := mustBI(a.Value)
	validAfter := mustBI(a.ValidAfter)
	validBefore := mustBI(a.ValidBefore)

	nonceHex := strings.TrimPrefix(a.Nonce, "0x")
	nonceBytes, err := hex.DecodeString(nonceHex)
	if err != nil {
		return common.Hash{}, [32]byte{}, fmt.Errorf("invalid nonce: %w", err)
	}
	var nonce [32]byte
	copy(nonce[32-len(nonceBytes):], nonceBytes)

	ds := domainSeparator(a.DomainName, a.DomainVersion, chainID, assetAddr)
	ah := authHash(from, to, value, validAfter, validBefore, nonce)
	digest := crypto.Keccak256Hash(append([]byte{0x19, 0x01}, append(ds.Bytes(), ah.Bytes()...)...))
	return digest, nonce, nil
}

func chainIDFromCAIP2(caip2 string) (*big.Int, error) {
	parts := strings.Split(caip2, ":")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid network: %s", caip2)
	}
	chainID := new(big.Int)
	if _, ok := chainID.SetString(parts[1], 10); !ok {
		return nil, fmt.Errorf("invalid chainId: %s", parts[1])
	}
	return chainID, nil
}

// VerifyAndSettle implements Client: it verifies the EIP-3009 signature
// locally, then submits transferWithAuthorization to the asset contract,
// paying gas from its own relayer key.
func (f *LocalEVM) VerifyAndSettle(ctx context.Context, p message.PaymentPayload, requirements *payment.Requirements) (string, error) {
	if p.Payload == "" {
		return "", fmt.Errorf("payment payload missing EIP-3009 authorization")
	}
	auth, err := parseAuthorization(p.Payload)
	if err != nil {
		return "", err
	}

	validBefore := mustBI(auth.ValidBefore)
	if validBefore.Int64() > 0 && validBefore.Int64() < time.Now().Unix() {
		return "", fmt.Errorf("authorization expired (validBefore=%d)", validBefore.Int64())
	}

	chainID, err := chainIDFromCAIP2(p.Network)
	if err != nil {
		return "", err
	}

	var assetAddress, payTo, amount string
	if requirements != nil {
		for _, a := range requirements.Accepts {
			if a.Network == p.Network {
				assetAddress, payTo, amount = a.Asset, a.PayTo, a.MaxAmountRequired
				break
			}
		}
	}
	if assetAddress == "" {
		return "", fmt.Errorf("no matching requirements entry for network %s", p.Network)
	}

	digest, nonce, err := eip712Digest(auth, chainID, assetAddress)
	if err != nil {
		return "", err
	}

	sigHex := strings.TrimPrefix(auth.Signature, "0x")
	sig, err := hex.DecodeString(sigHex)
	if err != nil || len(sig) != 65 {
		return "", fmt.Errorf("invalid signature")
	}
	recoverSig := append([]byte(nil), sig...)
	if recoverSig[64] >= 27 {
		recoverSig[64] -= 27
	}
	pubBytes, err := crypto.Ecrecover(digest.Bytes(), recoverSig)
	if err != nil {
		return "", fmt.Errorf("ecrecover: %w", err)
	}
	pub, err := crypto.UnmarshalPubkey(pubBytes)
	if err != nil {
		return "", fmt.Errorf("unmarshal pubkey: %w", err)
	}
	recovered := crypto.PubkeyToAddress(*pub)
	expected := common.HexToAddress(auth.From)
	if recovered != expected {
		return "", fmt.Errorf("signature mismatch: signed by %s, claimed %s", recovered.Hex(), expected.Hex())
	}

	authTo := common.HexToAddress(auth.To)
	reqPayTo := common.HexToAddress(payTo)
	if authTo != reqPayTo {
		return "", fmt.Errorf("payTo mismatch: auth=%s req=%s", authTo.Hex(), reqPayTo.Hex())
	}
	authValue := mustBI(auth.Value)
	reqAmount := mustBI(amount)
	if authValue.Cmp(reqAmount) < 0 {
		return "", fmt.Errorf("amount too low: authorized %s, required %s", authValue, reqAmount)
	}

	slog.Info("local-evm verify OK", "payer", recovered.Hex(), "amount", authValue.String())

	return f.settle(ctx, auth, nonce, chainID, assetAddress, sig)
}

func (f *LocalEVM) settle(ctx context.Context, auth *authorization, nonce [32]byte, chainID *big.Int, assetAddress string, sig []byte) (string, error) {
	from := common.HexToAddress(auth.From)
	to := common.HexToAddress(auth.To)
	value := mustBI(auth.Value)
	validAfter := mustBI(auth.ValidAfter)
	validBefore := mustBI(auth.ValidBefore)
	assetAddr := common.HexToAddress(assetAddress)

	var r, s [32]byte
	copy(r[:], sig[:32])
	copy(s[:], sig[32:64])
	v := sig[64]
	if v < 27 {
		v += 27
	}

	callData := packTransferWithAuth(from, to, value, validAfter, validBefore, nonce, v, r, s)

	client, err := ethclient.DialContext(ctx, f.rpcURL)
	if err != nil {
		return "", fmt.Errorf("rpc connect: %w", err)
	}
	defer client.Close()

	txNonce, err := client.PendingNonceAt(ctx, f.address)
	if err != nil {
		return "", fmt.Errorf("pending nonce: %w", err)
	}

	gasLimit := uint64(100_000)
	if est, err := client.EstimateGas(ctx, gethereum.CallMsg{From: f.address, To: &assetAddr, Data: callData}); err == nil {
		gasLimit = est * 12 / 10
	}

	header, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("latest header: %w", err)
	}
	tip := big.NewInt(1e9)
	feeCap := new(big.Int).Add(header.BaseFee, tip)

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     txNonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &assetAddr,
		Value:     new(big.Int),
		Data:      callData,
	})

	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), f.privateKey)
	if err != nil {
		return "", fmt.Errorf("signing settlement tx: %w", err)
	}

	if err := client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("transaction_failed: %w", err)
	}

	slog.Info("settlement tx submitted", "hash", signed.Hash().Hex(), "from", from.Hex(), "to", to.Hex(), "value", value.String())
	return signed.Hash().Hex(), nil
}

func packTransferWithAuth(
	from, to common.Address,
	value, validAfter, validBefore *big.Int,
	nonce [32]byte,
	v uint8,
	r, s [32]byte,
) []byte {
	data := make([]byte, 4+9*32)
	copy(data[:4], transferWithAuthSig)
	offset := 4
	copy(data[offset+12:offset+32], from.Bytes())
	offset += 32
	copy(data[offset+12:offset+32], to.Bytes())
	offset += 32
	copy(data[offset:offset+32], pad32(value))
	offset += 32
	copy(data[offset:offset+32], pad32(validAfter))
	offset += 32
	copy(data[offset:offset+32], pad32(validBefore))
	offset += 32
	copy(data[offset:offset+32], nonce[:])
	offset += 32
	data[offset+31] = v
	offset += 32
	copy(data[offset:offset+32], r[:])
	offset += 32
	copy(data[offset:offset+32], s[:])
	return data
}
