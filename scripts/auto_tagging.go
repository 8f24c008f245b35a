// 手动触发 AI 自动分类脚本
//
// 该功能已集成到主应用的后台定时任务中（tagging.backfill_interval_hours）。
// 此脚本仅用于手动触发，例如首次部署或批量导入题库之后。
//
// 用法: go run scripts/auto_tagging.go [-batches N]

package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"medboard_backend/internal/config"
	"medboard_backend/internal/llm"
	"medboard_backend/internal/repository"
	"medboard_backend/internal/service"
	"medboard_backend/pkg/database"
	"medboard_backend/pkg/logger"
)

func main() {
	batches := flag.Int("batches", 1, "最多处理的批次数，每批 50 道题")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := llm.NewProvider(ctx, cfg.LLM, logger.Log)
	if err != nil {
		log.Fatalf("LLM 初始化失败: %v", err)
	}

	tagging := service.NewTaggingService(service.NewTaggingBackend(cfg.Tagging, provider))
	if tagging.Backend() == service.BackendLocalLLM {
		log.Fatalf("backend=%s 只会返回默认分类，无法补全题目分类", tagging.Backend())
	}
	autoTagging := service.NewAutoTaggingService(repository.NewQuestionRepository(db), tagging)

	log.Printf("手动触发自动分类任务 (backend=%s)...", tagging.Backend())
	total := 0
	for i := 0; i < *batches && ctx.Err() == nil; i++ {
		n := autoTagging.RunAutoTagging(ctx)
		total += n
		if n == 0 {
			break
		}
	}
	log.Printf("完成！共分类 %d 道题", total)
}
