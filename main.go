package main

import (
	"github.com/sirupsen/logrus"

	"storybook-server/config"
	"storybook-server/models"
	"storybook-server/routers"
	"storybook-server/routers/api"
	"storybook-server/service"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.InfoLevel)

	config.InitConfig()
	logrus.Infof("Server starting on port %s", config.AppConfig.Server.Port)

	models.InitDB()
	service.InitMinIO()

	cfg := config.AppConfig

	var remote service.LLMClient
	if llm, err := service.NewOpenAILLM(cfg.AI.LLMAPI, cfg.AI.LLMKey, cfg.AI.LLMModel); err != nil {
		logrus.Warnf("远端 LLM 未配置: %v，将依赖本地回退层", err)
	} else {
		remote = llm
	}
	local := service.NewLocalLLM(cfg.Models.GGUFPath, cfg.Models.LlamaEndpoint)

	var assembler service.DocumentAssembler
	if cfg.Worker.Assembler != "" {
		assembler = service.NewWorkerAssembler(cfg.Worker.Assembler)
	}

	pipeline := &service.Pipeline{
		Sessions:  service.NewSessionManager(),
		Story:     service.NewStoryGenerator(remote, local),
		Planner:   &service.ScenePlanner{Remote: remote},
		Images:    service.NewImageGenerator(cfg.AI.ImageAPI, cfg.AI.ImageKey, cfg.Worker.Addr),
		Narrator:  service.NewNarrator(cfg.AI.VoiceAPI),
		STT:       service.NewTranscriber(cfg.AI.SttAPI),
		Store:     service.NewLibraryStore(cfg.Library.Root, assembler),
		Assembler: assembler,
		Recorder:  service.NewRunRecorder(models.GormDB),
		ImagesDir: cfg.Library.ImagesDir,
		AudioDir:  cfg.Library.AudioDir,
	}
	api.Init(pipeline)

	r := routers.InitRouter()
	if err := r.Run(cfg.Server.Port); err != nil {
		logrus.Fatalf("启动服务器失败: %v", err)
	}
}
