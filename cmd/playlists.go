package cmd

import (
	"fmt"
	"strings"

	"KPlayer/core/library"
	"KPlayer/model"

	"github.com/spf13/cobra"
)

var (
	playlistLimit int
	playlistName  string
	playlistSongs []string
	playlistOwner string

	trackTitle    string
	trackArtist   string
	trackAlbum    string
	trackDuration string
	trackUnlike   bool
)

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "List, show, create and edit playlists",
}

var playlistsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List playlists with resolved cover URLs",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackends(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		limit := cfg.PlaylistListLimit
		if cmd.Flags().Changed("limit") {
			limit = playlistLimit
		}
		playlists, err := library.NewPlaylistLoader(b.playlists, b.gateway).ListPlaylists(cmd.Context(), limit)
		if err != nil {
			return err
		}

		for _, p := range playlists {
			fmt.Printf("%s  %-40s %3d tracks  %s\n", p.ID, p.Title, p.TracksCount, p.Image)
		}
		fmt.Printf("%d playlists\n", len(playlists))
		return nil
	},
}

var playlistsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a playlist and its tracks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackends(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		res := library.NewDetailLoader(b.playlists, b.gateway).GetPlaylistDetail(cmd.Context(), args[0])
		switch {
		case res.IsNotFound():
			return fmt.Errorf("playlist %s not found", args[0])
		case res.IsFailure():
			return res.Err()
		}

		detail, _ := res.Data()
		fmt.Printf("%s (%d tracks)\n", detail.Title, detail.TrackCount)
		if detail.Description != nil {
			fmt.Println(*detail.Description)
		}
		fmt.Printf("Cover: %s\n\n", detail.Image)
		for _, t := range detail.Tracks {
			fmt.Printf("%3d. %-40s %-25s %s\n", t.Index, t.Title, t.Artist, t.Duration)
		}
		return nil
	},
}

var playlistsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a playlist from song ids",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackends(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		opts := []library.CreationOption{
			library.WithPlaceholderCover(cfg.PlaceholderCover),
			library.WithNotifier(library.NotifierFunc(printNotice)),
		}
		if playlistOwner != "" {
			opts = append(opts, library.WithOwner(playlistOwner))
		}
		wf := library.NewCreationWorkflow(library.NewSongCatalog(b.songs, b.gateway), b.playlists, opts...)

		<-wf.Open(cmd.Context())
		if err := wf.SetName(playlistName); err != nil {
			return err
		}
		for _, id := range playlistSongs {
			if err := wf.ToggleSong(id); err != nil {
				return err
			}
		}

		id, err := wf.Submit(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var playlistsAddTrackCmd = &cobra.Command{
	Use:   "add-track <playlistId>",
	Short: "Append a track to a playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(trackTitle) == "" {
			return fmt.Errorf("--title is required")
		}
		b, err := openBackends(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		id, err := b.tracks.AddTrack(cmd.Context(), args[0], &model.Track{
			Title:    trackTitle,
			Artist:   trackArtist,
			Album:    trackAlbum,
			Duration: trackDuration,
		})
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var playlistsLikeCmd = &cobra.Command{
	Use:   "like <playlistId> <trackId>",
	Short: "Mark a track as liked",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackends(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		return b.tracks.SetLiked(cmd.Context(), args[0], args[1], !trackUnlike)
	},
}

func printNotice(n library.Notice) {
	if n.Message != "" {
		fmt.Printf("[%s] %s: %s\n", n.Level, n.Title, n.Message)
		return
	}
	fmt.Printf("[%s] %s\n", n.Level, n.Title)
}

func init() {
	rootCmd.AddCommand(playlistsCmd)
	playlistsCmd.AddCommand(playlistsListCmd, playlistsShowCmd, playlistsCreateCmd, playlistsAddTrackCmd, playlistsLikeCmd)

	playlistsListCmd.Flags().IntVarP(&playlistLimit, "limit", "n", 0, "maximum number of playlists, 0 for all")

	playlistsCreateCmd.Flags().StringVar(&playlistName, "name", "", "playlist name")
	playlistsCreateCmd.Flags().StringArrayVar(&playlistSongs, "song", nil, "song id to include, repeatable")
	playlistsCreateCmd.Flags().StringVar(&playlistOwner, "owner", "", "uid recorded as the playlist owner")

	playlistsAddTrackCmd.Flags().StringVar(&trackTitle, "title", "", "track title")
	playlistsAddTrackCmd.Flags().StringVar(&trackArtist, "artist", "", "track artist")
	playlistsAddTrackCmd.Flags().StringVar(&trackAlbum, "album", "", "album name")
	playlistsAddTrackCmd.Flags().StringVar(&trackDuration, "duration", "", "display duration, e.g. 3:07")

	playlistsLikeCmd.Flags().BoolVar(&trackUnlike, "unlike", false, "clear the liked flag instead")
}
