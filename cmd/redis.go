package cmd

import (
	"context"
	"fmt"
	"time"

	"KPlayer/db"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Check the Redis connection",
	Long:  `Connect to Redis and run a set/get/delete round trip on a scratch key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Redis: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		client, err := db.ConnectRedis(cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		fmt.Println("Connected to Redis.")

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		if err := db.CheckRedis(ctx, client); err != nil {
			return fmt.Errorf("redis round trip failed: %w", err)
		}
		fmt.Println("Redis read/write check passed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
