package cmd

import (
	"context"

	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/ssfz/history-vault/internal/web/proxy"
	"github.com/ssfz/history-vault/library/log"
)

var proxyCMD = &cobra.Command{
	Use:   "proxy",
	Short: "proxy",
	Long:  `forward public-origin requests to the API service`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		// the proxy needs no kv store or write keys, only settings and logging
		ctx := context.Background()
		if err := gconfig.Shared.BindPFlags(cmd.Flags()); err != nil {
			log.Logger.Panic("bind pflags", zap.Error(err))
		}
		setupSettings(ctx)
		setupLogger(ctx)
	},
	Run: func(cmd *cobra.Command, args []string) {
		p, err := proxy.New(gconfig.Shared.GetString("settings.proxy.upstream"))
		if err != nil {
			log.Logger.Panic("new proxy", zap.Error(err))
		}

		proxy.RunServer(gconfig.Shared.GetString("listen"), p)
	},
}

func init() {
	rootCMD.AddCommand(proxyCMD)
}
