package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/offsync/internal/buildinfo"
	"github.com/dmitrijs2005/offsync/internal/flagx"
	"github.com/dmitrijs2005/offsync/internal/server"
	"github.com/dmitrijs2005/offsync/internal/server/auth"
	"github.com/dmitrijs2005/offsync/internal/server/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	if owner := mintTokenFlag(os.Args[1:]); owner != "" {
		token, err := auth.GenerateToken(owner, []byte(cfg.SecretKey), cfg.AccessTokenValidityDuration)
		if err != nil {
			log.Fatalf("mint token: %v", err)
		}
		fmt.Println(token)
		return
	}

	buildinfo.PrintBuildData(os.Stdout)

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}

// mintTokenFlag returns the owner passed with -mint-token, if any.
func mintTokenFlag(args []string) string {
	var owner string
	fs := flag.NewFlagSet("mint", flag.ContinueOnError)
	fs.StringVar(&owner, "mint-token", "", "print an access token for the given owner and exit")
	_ = fs.Parse(flagx.FilterArgs(args, []string{"-mint-token", "--mint-token"}))
	return owner
}
