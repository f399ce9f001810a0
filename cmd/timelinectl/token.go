package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jengzang/records-timeline/internal/middleware"
)

var (
	tokenUser string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseUser(tokenUser)
		if err != nil {
			return err
		}
		token, err := middleware.IssueToken(cfg.JWTSecret, userID, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "User ID the token is issued for")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.MarkFlagRequired("user")
}
