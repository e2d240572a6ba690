package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/skip2/go-qrcode"

	"github.com/lugondev/solmint/internal/solana"
)

const pendingTime = "pending"

// TransactionTable renders recent transactions as a table with time,
// signature and net SOL columns.
func TransactionTable(records []solana.TransactionRecord) string {
	if len(records) == 0 {
		return "No recent transactions."
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Time (UTC)", "Signature", "Amount (SOL)"})

	for _, r := range records {
		when := pendingTime
		if r.BlockTime != nil {
			when = r.BlockTime.UTC().Format(time.DateTime)
		}
		amount := r.NetSOLString()
		if r.NetLamports > 0 {
			amount = "+" + amount
		}
		if r.Failed {
			amount += " (failed)"
		}
		tw.AppendRow(table.Row{when, r.Signature.String(), amount})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// AddressQR renders address as a QR code made of terminal block characters.
func AddressQR(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}
	return strings.TrimRight(qr.ToSmallString(false), "\n"), nil
}
