package cmd

import (
	"context"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"KPlayer/core/importer"
	"KPlayer/core/library"

	"github.com/spf13/cobra"
)

var (
	songName       string
	songArtist     string
	songCollection string
	watchRate      float64
)

var songsCmd = &cobra.Command{
	Use:   "songs",
	Short: "List and upload songs",
}

var songsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List songs by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackends(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		songs, notice := library.NewSongCatalog(b.songs, b.gateway).ListSongs(cmd.Context())
		if notice != nil {
			printNotice(*notice)
		}
		for _, s := range songs {
			collection := ""
			if s.Collection != nil {
				collection = *s.Collection
			}
			fmt.Printf("%s  %-40s %-25s %s\n", s.ID, s.Name, s.Artist, collection)
		}
		return nil
	},
}

var songsUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload an audio file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackends(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return err
		}

		name := songName
		if name == "" {
			_, name = importer.ParseFileName(filepath.Base(args[0]))
		}

		uploader := library.NewSongUploader(b.blobs, b.songs, b.gateway)
		song, err := uploader.Upload(cmd.Context(), library.SongUpload{
			File:        f,
			FileName:    filepath.Base(args[0]),
			Size:        info.Size(),
			ContentType: mime.TypeByExtension(filepath.Ext(args[0])),
			Name:        name,
			Artist:      songArtist,
			Collection:  songCollection,
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", song.ID, song.StoragePath)
		return nil
	},
}

var songsWatchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Upload audio files as they appear in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackends(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w := importer.NewWatcher(args[0], library.NewSongUploader(b.blobs, b.songs, b.gateway), importer.Options{
			Artist:     songArtist,
			Collection: songCollection,
			RateLimit:  watchRate,
		})

		results := make(chan importer.Result)
		go printImports(ctx, results)
		return w.Run(ctx, results)
	},
}

func printImports(ctx context.Context, results <-chan importer.Result) {
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-results:
			if res.Err != nil {
				fmt.Printf("FAIL %s: %v\n", res.Path, res.Err)
				continue
			}
			fmt.Printf("OK   %s -> %s\n", res.Path, res.Song.ID)
		}
	}
}

func init() {
	rootCmd.AddCommand(songsCmd)
	songsCmd.AddCommand(songsListCmd, songsUploadCmd, songsWatchCmd)

	songsUploadCmd.Flags().StringVar(&songName, "name", "", "song name, defaults to the file name")
	for _, c := range []*cobra.Command{songsUploadCmd, songsWatchCmd} {
		c.Flags().StringVar(&songArtist, "artist", "", "artist name")
		c.Flags().StringVar(&songCollection, "collection", "", "album or collection")
	}
	songsWatchCmd.Flags().Float64Var(&watchRate, "rate", 1, "maximum uploads per second")
}
