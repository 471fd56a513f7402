package cmd

import (
	"fmt"

	"KPlayer/cache"
	"KPlayer/core/auth"
	"KPlayer/db"
	"KPlayer/repository"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	authName     string
	authEmail    string
	authPassword string
	authToken    string
)

// authSession is a Session on the configured user store and token cache.
type authSession struct {
	*auth.Session
	db    *gorm.DB
	redis *redis.Client
}

func openAuthSession() (*authSession, error) {
	gormDB, err := db.ConnectGormDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		db.CloseGormDB(gormDB)
		return nil, err
	}
	client, err := db.ConnectRedis(cfg)
	if err != nil {
		db.CloseGormDB(gormDB)
		return nil, err
	}

	svc := auth.NewService(repository.NewGormUserRepository(gormDB), cache.NewSessionCache(client), cfg.JWTSecret, cfg.TokenTTL)
	session := auth.NewSession(svc)
	session.Subscribe(printIdentity)
	return &authSession{Session: session, db: gormDB, redis: client}, nil
}

func (s *authSession) Close() {
	s.redis.Close()
	db.CloseGormDB(s.db)
}

func printIdentity(id *auth.Identity) {
	if id == nil {
		fmt.Println("signed out")
		return
	}
	fmt.Printf("signed in as %s <%s> (%s)\n", id.DisplayName, id.Email, id.UID)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Register, sign in and manage session tokens",
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and print its session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openAuthSession()
		if err != nil {
			return err
		}
		defer s.Close()

		id, err := s.SignUp(cmd.Context(), authName, authEmail, authPassword)
		if err != nil {
			return err
		}
		fmt.Println(id.Token)
		return nil
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and print a session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openAuthSession()
		if err != nil {
			return err
		}
		defer s.Close()

		id, err := s.SignIn(cmd.Context(), authEmail, authPassword)
		if err != nil {
			return err
		}
		fmt.Println(id.Token)
		return nil
	},
}

var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the user behind a session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openAuthSession()
		if err != nil {
			return err
		}
		defer s.Close()

		_, err = s.Restore(cmd.Context(), authToken)
		return err
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke a session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openAuthSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if _, err := s.Restore(cmd.Context(), authToken); err != nil {
			return err
		}
		return s.SignOut(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authRegisterCmd, authLoginCmd, authWhoamiCmd, authLogoutCmd)

	authRegisterCmd.Flags().StringVar(&authName, "name", "", "display name")
	for _, c := range []*cobra.Command{authRegisterCmd, authLoginCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "account email")
		c.Flags().StringVar(&authPassword, "password", "", "account password")
	}
	for _, c := range []*cobra.Command{authWhoamiCmd, authLogoutCmd} {
		c.Flags().StringVar(&authToken, "token", "", "session token")
		_ = c.MarkFlagRequired("token")
	}
}
