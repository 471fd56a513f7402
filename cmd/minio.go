package cmd

import (
	"context"
	"fmt"
	"time"

	"KPlayer/storage"

	"github.com/spf13/cobra"
)

var (
	minioPrefix    string
	minioStats     bool
	minioRecursive bool
	minioDelete    bool
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Inspect the MinIO bucket",
	Long:  `List objects in the MinIO bucket, print bucket statistics, or delete everything under a prefix.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("MinIO: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		store, err := storage.NewMinioStore(ctx, cfg)
		if err != nil {
			return err
		}

		if minioDelete {
			if minioPrefix == "" {
				return fmt.Errorf("--delete requires --prefix")
			}
			n, err := store.DeletePrefix(ctx, minioPrefix)
			if err != nil {
				return fmt.Errorf("delete %s: %w", minioPrefix, err)
			}
			fmt.Printf("Deleted %d objects under %s\n", n, minioPrefix)
			return nil
		}

		objects, stats, err := store.ListObjects(ctx, minioPrefix, minioRecursive || minioStats)
		if err != nil {
			return err
		}

		if !minioStats {
			for _, o := range objects {
				fmt.Printf("%-60s %10s  %s\n", o.Key, formatSize(o.Size), o.LastModified.Format(time.DateTime))
			}
		}
		fmt.Printf("\nObjects: %d, Total size: %s", stats.TotalObjects, formatSize(stats.TotalSize))
		if !stats.LastModified.IsZero() {
			fmt.Printf(", Last modified: %s", stats.LastModified.Format(time.DateTime))
		}
		fmt.Println()
		return nil
	},
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "only objects under this prefix")
	minioCmd.Flags().BoolVarP(&minioStats, "stats", "s", false, "print bucket statistics only")
	minioCmd.Flags().BoolVarP(&minioRecursive, "recursive", "r", false, "list nested objects")
	minioCmd.Flags().BoolVarP(&minioDelete, "delete", "d", false, "delete every object under --prefix")

	minioCmd.Example = `  # list top-level objects
  kplayer minio

  # list every song file
  kplayer minio -r -p "songs/"

  # bucket statistics
  kplayer minio -s

  # delete a directory
  kplayer minio -d -p "songs/Unknown/"`
}
