// File: cmd/tokengen/main.go
// tokengen 簽發 access token，供 /ws/users/ 訂閱使用
//
//	JWT_SECRET=... tokengen -user-id 42 [-admin] [-ttl 1h]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"userhub/internal/model"
	"userhub/internal/service"

	"github.com/joho/godotenv"
)

var (
	exitFunc   = os.Exit
	loadDotenv = func() error { return godotenv.Load() }
)

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tokengen", flag.ContinueOnError)
	fs.SetOutput(out)
	userID := fs.Int("user-id", 0, "使用者 ID")
	isAdmin := fs.Bool("admin", false, "簽發管理員 token (可訂閱 users.all)")
	ttl := fs.Duration("ttl", time.Hour, "有效期限")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *userID <= 0 {
		return errors.New("-user-id 必須為正整數")
	}
	if *ttl <= 0 {
		return errors.New("-ttl 必須大於 0")
	}

	_ = loadDotenv()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return fmt.Errorf("環境變數 JWT_SECRET 未設定")
	}

	tok, err := service.IssueAccessToken(secret, model.User{ID: *userID, IsAdmin: *isAdmin}, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, tok)
	return err
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Print(err)
		exitFunc(1)
	}
}
