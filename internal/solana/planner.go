package solana

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// transferCheckedOpcode is the SPL token instruction discriminator for
// TransferChecked (shared by the legacy and Token-2022 programs).
const transferCheckedOpcode = 12

// TransferPlan describes one airdrop transfer: who pays, where the tokens
// come from and go to, and whether the receiver's token account must be
// created first.
type TransferPlan struct {
	Payer                      solana.PublicKey // airdrop owner; fee payer and transfer authority
	SenderTokenAccount         solana.PublicKey
	ReceiverTokenAccount       solana.PublicKey
	ReceiverOwner              solana.PublicKey
	Mint                       solana.PublicKey
	RawAmount                  uint64
	Decimals                   uint8
	ReceiverTokenAccountExists bool
}

// BuildTransferPlan assembles the instruction sequence for a claim: an
// optional create-associated-token-account instruction followed by a
// TransferChecked. Pure construction, no I/O.
func BuildTransferPlan(p TransferPlan) []solana.Instruction {
	instructions := make([]solana.Instruction, 0, 2)

	if !p.ReceiverTokenAccountExists {
		instructions = append(instructions, solana.NewInstruction(
			AssociatedTokenProgramID,
			solana.AccountMetaSlice{
				solana.NewAccountMeta(p.Payer, true, true),
				solana.NewAccountMeta(p.ReceiverTokenAccount, true, false),
				solana.NewAccountMeta(p.ReceiverOwner, false, false),
				solana.NewAccountMeta(p.Mint, false, false),
				solana.NewAccountMeta(solana.SystemProgramID, false, false),
				solana.NewAccountMeta(TokenProgramID, false, false),
				solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
			},
			nil,
		))
	}

	instructions = append(instructions, solana.NewInstruction(
		TokenProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(p.SenderTokenAccount, true, false),
			solana.NewAccountMeta(p.Mint, false, false),
			solana.NewAccountMeta(p.ReceiverTokenAccount, true, false),
			solana.NewAccountMeta(p.Payer, false, true),
		},
		encodeTransferChecked(p.RawAmount, p.Decimals),
	))

	return instructions
}

// encodeTransferChecked packs the 10-byte TransferChecked payload:
// opcode, little-endian uint64 raw amount, decimals.
func encodeTransferChecked(rawAmount uint64, decimals uint8) []byte {
	data := make([]byte, 10)
	data[0] = transferCheckedOpcode
	binary.LittleEndian.PutUint64(data[1:9], rawAmount)
	data[9] = decimals
	return data
}
