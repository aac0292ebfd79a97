// Package global global shared variables
package global

import (
	"context"
	"database/sql"

	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	_ "github.com/mattn/go-sqlite3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"

	fileCtl "github.com/ssfz/history-vault/internal/web/file/controller"
	fileDao "github.com/ssfz/history-vault/internal/web/file/dao"
	fileSvc "github.com/ssfz/history-vault/internal/web/file/service"
	historyCtl "github.com/ssfz/history-vault/internal/web/history/controller"
	historyDao "github.com/ssfz/history-vault/internal/web/history/dao"
	historySvc "github.com/ssfz/history-vault/internal/web/history/service"
	"github.com/ssfz/history-vault/library/auth"
	"github.com/ssfz/history-vault/library/db/kv"
	"github.com/ssfz/history-vault/library/log"
)

var (
	HistoryController *historyCtl.Type
	FileController    *fileCtl.Type
)

// Setup wires the kv store, blob storage, secrets, and controllers
// from the loaded settings.
func Setup(ctx context.Context) {
	keys, err := auth.NewKeys(
		gconfig.Shared.GetString("settings.keys.upload"),
		gconfig.Shared.GetString("settings.keys.delete"),
	)
	if err != nil {
		log.Logger.Panic("load write keys", zap.Error(err))
	}

	store := setupKV(ctx)

	HistoryController = historyCtl.New(
		historySvc.New(log.Logger.Named("history"),
			historyDao.New(log.Logger.Named("history-dao"), store)),
		keys,
	)
	FileController = fileCtl.New(
		fileSvc.New(log.Logger.Named("file"), setupFileStorage(ctx, store)),
		keys,
	)
}

func setupKV(_ context.Context) kv.Interface {
	backend := gconfig.Shared.GetString("settings.kv.backend")
	defer log.Logger.Info("setup kv store", zap.String("backend", backend))

	switch backend {
	case "redis":
		return kv.NewRedis(&redis.Options{
			Addr: gconfig.Shared.GetString("settings.kv.redis.addr"),
			DB:   gconfig.Shared.GetInt("settings.kv.redis.db"),
		})
	case "sqlite":
		db, err := sql.Open("sqlite3", gconfig.Shared.GetString("settings.kv.sqlite.path"))
		if err != nil {
			log.Logger.Panic("open sqlite", zap.Error(err))
		}
		store, err := kv.NewSQL(db)
		if err != nil {
			log.Logger.Panic("setup sqlite kv", zap.Error(err))
		}
		return store
	case "memory":
		return kv.NewMemory()
	default:
		log.Logger.Panic("unknown kv backend", zap.String("backend", backend))
		return nil
	}
}

func setupFileStorage(_ context.Context, store kv.Interface) fileDao.Storage {
	backend := gconfig.Shared.GetString("settings.file.backend")
	defer log.Logger.Info("setup file storage", zap.String("backend", backend))

	switch backend {
	case "minio":
		cli, err := minio.New(
			gconfig.Shared.GetString("settings.file.minio.endpoint"),
			&minio.Options{
				Creds: credentials.NewStaticV4(
					gconfig.Shared.GetString("settings.file.minio.access_key"),
					gconfig.Shared.GetString("settings.file.minio.secret_key"),
					"",
				),
				Secure: gconfig.Shared.GetBool("settings.file.minio.use_ssl"),
			})
		if err != nil {
			log.Logger.Panic("connect minio", zap.Error(err))
		}
		return fileDao.NewMinio(log.Logger.Named("file-minio"), cli,
			gconfig.Shared.GetString("settings.file.minio.bucket"))
	default:
		// blobs share the record kv store
		return fileDao.NewKV(log.Logger.Named("file-kv"), store)
	}
}
