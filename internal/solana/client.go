package solana

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/solpool/backend/utils"
)

// Record mirrors the on-chain record account layout after the 8-byte
// anchor discriminator: author pubkey, data string, unix timestamp.
type Record struct {
	Author    string `json:"author"`
	Data      string `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

type recordAccount struct {
	Author    solanago.PublicKey
	Data      string
	Timestamp int64
}

// Client is a thin gateway over the on-chain program: it builds and
// submits instructions signed by the service wallet and reads record
// accounts back. All consensus and signing mechanics stay in solana-go.
type Client struct {
	rpc       *rpc.Client
	programID solanago.PublicKey
	payer     solanago.PrivateKey
	logger    *utils.Logger
}

func NewClient(rpcURL, programID, payerKey string, logger *utils.Logger) (*Client, error) {
	program, err := solanago.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id: %w", err)
	}

	payer, err := solanago.PrivateKeyFromBase58(payerKey)
	if err != nil {
		return nil, fmt.Errorf("invalid service wallet key: %w", err)
	}

	logger.Infof("Solana gateway initialized for program %s", program)

	return &Client{
		rpc:       rpc.New(rpcURL),
		programID: program,
		payer:     payer,
		logger:    logger,
	}, nil
}

func anchorDiscriminator(method string) []byte {
	sum := sha256.Sum256([]byte("global:" + method))
	return sum[:8]
}

func encodeCreateRecord(data string) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes(anchorDiscriminator("create_record"), false); err != nil {
		return nil, err
	}
	if err := enc.WriteString(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeUpdateRecord(index uint64, newData string) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes(anchorDiscriminator("update_record"), false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(index, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteString(newData); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CreateRecord allocates a fresh record account and submits the
// create_record instruction, funded and signed by the service wallet.
func (c *Client) CreateRecord(ctx context.Context, walletAddress, data string) (string, error) {
	author, err := solanago.PublicKeyFromBase58(walletAddress)
	if err != nil {
		return "", fmt.Errorf("invalid wallet address: %w", err)
	}

	record := solanago.NewWallet()

	payload, err := encodeCreateRecord(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode instruction: %w", err)
	}

	inst := solanago.NewInstruction(c.programID, solanago.AccountMetaSlice{
		solanago.NewAccountMeta(record.PublicKey(), true, true),
		solanago.NewAccountMeta(author, true, false),
		solanago.NewAccountMeta(solanago.SystemProgramID, false, false),
	}, payload)

	sig, err := c.submit(ctx, inst, &record.PrivateKey)
	if err != nil {
		return "", err
	}

	c.logger.Infof("Record created, signature %s", sig)
	return sig, nil
}

// UpdateRecord rewrites the data of an existing record account.
func (c *Client) UpdateRecord(ctx context.Context, recordAddress, walletAddress string, index uint64, newData string) (string, error) {
	record, err := solanago.PublicKeyFromBase58(recordAddress)
	if err != nil {
		return "", fmt.Errorf("invalid record address: %w", err)
	}
	author, err := solanago.PublicKeyFromBase58(walletAddress)
	if err != nil {
		return "", fmt.Errorf("invalid wallet address: %w", err)
	}

	payload, err := encodeUpdateRecord(index, newData)
	if err != nil {
		return "", fmt.Errorf("failed to encode instruction: %w", err)
	}

	inst := solanago.NewInstruction(c.programID, solanago.AccountMetaSlice{
		solanago.NewAccountMeta(record, true, false),
		solanago.NewAccountMeta(author, false, false),
	}, payload)

	sig, err := c.submit(ctx, inst, nil)
	if err != nil {
		return "", err
	}

	c.logger.Infof("Record updated, signature %s", sig)
	return sig, nil
}

// GetRecords lists record accounts authored by the wallet, matching the
// author pubkey right after the discriminator.
func (c *Client) GetRecords(ctx context.Context, walletAddress string) ([]Record, error) {
	author, err := solanago.PublicKeyFromBase58(walletAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet address: %w", err)
	}

	out, err := c.rpc.GetProgramAccountsWithOpts(ctx, c.programID, &rpc.GetProgramAccountsOpts{
		Commitment: rpc.CommitmentConfirmed,
		Filters: []rpc.RPCFilter{
			{
				Memcmp: &rpc.RPCFilterMemcmp{
					Offset: 8,
					Bytes:  solanago.Base58(author.Bytes()),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}

	records := make([]Record, 0, len(out))
	for _, acc := range out {
		rec, err := decodeRecord(acc.Account.Data.GetBinary())
		if err != nil {
			c.logger.Warnf("Skipping undecodable record account %s: %v", acc.Pubkey, err)
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}

func decodeRecord(raw []byte) (*Record, error) {
	if len(raw) < 8 {
		return nil, fmt.Errorf("account data too short: %d bytes", len(raw))
	}

	var acc recordAccount
	if err := bin.NewBorshDecoder(raw[8:]).Decode(&acc); err != nil {
		return nil, fmt.Errorf("failed to decode record account: %w", err)
	}

	return &Record{
		Author:    acc.Author.String(),
		Data:      acc.Data,
		Timestamp: acc.Timestamp,
	}, nil
}

func (c *Client) submit(ctx context.Context, inst solanago.Instruction, extraSigner *solanago.PrivateKey) (string, error) {
	recent, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return "", fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solanago.NewTransaction(
		[]solanago.Instruction{inst},
		recent.Value.Blockhash,
		solanago.TransactionPayer(c.payer.PublicKey()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build transaction: %w", err)
	}

	_, err = tx.Sign(func(key solanago.PublicKey) *solanago.PrivateKey {
		if key.Equals(c.payer.PublicKey()) {
			return &c.payer
		}
		if extraSigner != nil && key.Equals(extraSigner.PublicKey()) {
			return extraSigner
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	return sig.String(), nil
}
