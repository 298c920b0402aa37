package main

import (
	"flag"
	"log"

	"lingo_learn_client/internal/app"
	"lingo_learn_client/internal/config"
	"lingo_learn_client/pkg/configwatcher"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件目录")
	watch := flag.Bool("watch-config", false, "监听配置文件变更并热更新")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)

	if *watch {
		go configwatcher.WatchConfig(*configDir+"/config.yaml", application.ApplyConfig)
	}

	application.Run()
}
