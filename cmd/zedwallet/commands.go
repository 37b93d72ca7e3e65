// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var newWalletCommand = &cli.Command{
	Name:  "new",
	Usage: "create a new wallet and save it locally",
	Action: func(c *cli.Context) error {
		var wallet localWallet
		if err := clientFromContext(c).get("/wallet/create", &wallet); err != nil {
			return err
		}
		if err := saveWallet(&wallet); err != nil {
			return err
		}

		fmt.Println("=== New Wallet Created ===")
		fmt.Printf("Address: %s\n", wallet.Address)
		fmt.Printf("Seed: %s\n", wallet.Seed)
		fmt.Println("\nIMPORTANT: save this seed phrase securely. Losing it means losing access to your funds.")
		fmt.Printf("Wallet details saved to %s\n", walletPath())
		return nil
	},
}

var addressCommand = &cli.Command{
	Name:  "address",
	Usage: "show the current wallet's address",
	Action: func(c *cli.Context) error {
		wallet, err := loadWallet()
		if err != nil {
			return err
		}
		fmt.Println(wallet.Address)
		return nil
	},
}

type balanceResult struct {
	Balance float64 `json:"balance"`
}

var balanceCommand = &cli.Command{
	Name:      "balance",
	Usage:     "check an address's balance",
	ArgsUsage: "[address]",
	Action: func(c *cli.Context) error {
		addr := c.Args().First()
		if addr == "" {
			wallet, err := loadWallet()
			if err != nil {
				return err
			}
			addr = wallet.Address
		}

		var result balanceResult
		if err := clientFromContext(c).get("/user/balance/"+addr, &result); err != nil {
			return err
		}
		fmt.Printf("Balance: %v ZED\n", result.Balance)
		return nil
	},
}

type transactionCreateResult struct {
	Status bool    `json:"status"`
	TxID   string  `json:"txid"`
	Fee    float64 `json:"fee"`
	Error  string  `json:"error"`
}

var sendCommand = &cli.Command{
	Name:      "send",
	Usage:     "send ZED to another address",
	ArgsUsage: "<amount> <recipient>",
	Action: func(c *cli.Context) error {
		if c.Args().Len() < 2 {
			return fmt.Errorf("usage: zedwallet send <amount> <recipient>")
		}
		wallet, err := loadWallet()
		if err != nil {
			return err
		}

		var amount float64
		if _, err := fmt.Sscanf(c.Args().Get(0), "%f", &amount); err != nil {
			return fmt.Errorf("invalid amount %q", c.Args().Get(0))
		}
		recipient := c.Args().Get(1)

		body := map[string]interface{}{
			"sender":    wallet.Address,
			"recipient": recipient,
			"amount":    amount,
			"seed":      wallet.Seed,
		}
		var result transactionCreateResult
		if err := clientFromContext(c).post("/transaction/create", body, &result); err != nil {
			return err
		}
		if !result.Status {
			return fmt.Errorf("transaction failed: %s", result.Error)
		}
		fmt.Printf("Transaction successful! TXID: %s (fee: %v ZED)\n", result.TxID, result.Fee)
		return nil
	},
}

type networkInfoResult struct {
	Height      uint64  `json:"height"`
	TotalSupply float64 `json:"total_supply"`
	Difficulty  int     `json:"difficulty"`
	BlockReward float64 `json:"block_reward"`
	NodeCount   int     `json:"node_count"`
	Threshold   int     `json:"threshold"`
	Window      float64 `json:"window"`
	ZedoGuard   bool    `json:"zedoguard"`
}

var infoCommand = &cli.Command{
	Name:  "info",
	Usage: "show blockchain info",
	Action: func(c *cli.Context) error {
		var info networkInfoResult
		if err := clientFromContext(c).get("/network/info", &info); err != nil {
			return err
		}
		fmt.Println("=== Blockchain Info ===")
		fmt.Printf("Current height: %d\n", info.Height)
		fmt.Printf("Total supply: %v ZED\n", info.TotalSupply)
		fmt.Printf("Current difficulty: %d\n", info.Difficulty)
		fmt.Printf("Block reward: %v ZED\n", info.BlockReward)
		fmt.Printf("Connected nodes: %d\n", info.NodeCount)
		fmt.Printf("ZedoGuard threshold: %d blocks\n", info.Threshold)
		fmt.Printf("ZedoGuard window: %v seconds\n", info.Window)
		if info.ZedoGuard {
			fmt.Println("ZedoGuard: enabled")
		}
		return nil
	},
}

type validateResult struct {
	Valid bool `json:"valid"`
}

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "check whether an address is well-formed",
	ArgsUsage: "<address>",
	Action: func(c *cli.Context) error {
		addr := c.Args().First()
		if addr == "" {
			return fmt.Errorf("usage: zedwallet validate <address>")
		}
		var result validateResult
		if err := clientFromContext(c).get("/wallet/validate/"+addr, &result); err != nil {
			return err
		}
		fmt.Println(result.Valid)
		return nil
	},
}

type transactionEntry struct {
	Sender     string  `json:"sender"`
	Recipient  string  `json:"recipient"`
	Quantity   float64 `json:"quantity"`
	Fee        float64 `json:"fee"`
	TxID       string  `json:"txid"`
	Timestamp  float64 `json:"timestamp"`
	BlockIndex uint64  `json:"block_index"`
}

var transactionsCommand = &cli.Command{
	Name:  "transactions",
	Usage: "show recent transactions for the current wallet",
	Action: func(c *cli.Context) error {
		wallet, err := loadWallet()
		if err != nil {
			return err
		}
		var txs []transactionEntry
		if err := clientFromContext(c).get("/network/transactions/"+wallet.Address, &txs); err != nil {
			return err
		}

		fmt.Printf("Last %d transactions:\n", len(txs))
		for _, tx := range txs {
			fmt.Printf("TXID: %s | block %d | %s -> %s | %v ZED (fee %v)\n",
				tx.TxID, tx.BlockIndex, tx.Sender, tx.Recipient, tx.Quantity, tx.Fee)
		}
		return nil
	},
}
