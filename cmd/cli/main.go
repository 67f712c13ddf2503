package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"career-planner/internal/app"
	"career-planner/internal/app/console"
	"career-planner/pkg/config"
	"career-planner/pkg/tracing"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	cmd := "plan"
	var args []string
	if len(os.Args) > 1 {
		cmd = os.Args[1]
		args = os.Args[2:]
	}
	switch cmd {
	case "plan":
		runPlan()
	case "version":
		fmt.Println("career-planner cli " + version)
	case "config":
		runConfig()
	case "health":
		runHealth()
	case "chat":
		runChat(args)
	case "stream":
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "Usage: career stream <message>\n")
			os.Exit(1)
		}
		runStream(strings.Join(args, " "))
	case "help", "-h", "--help":
		printUsage()
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: career <command> [args]")
	fmt.Println("  plan (默认)       - 交互式生成职业规划、排期与推荐资源")
	fmt.Println("  version           - 显示版本")
	fmt.Println("  config            - 显示配置概要")
	fmt.Println("  health            - 检查 API 服务（CAREER_API_URL）")
	fmt.Println("  chat [user_id]    - 通过 API 交互式对话")
	fmt.Println("  stream <message>  - 通过 /chat/stream 逐词输出回复")
}

func runPlan() {
	cfg, err := config.LoadAPIConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	bootstrap, err := app.NewBootstrap(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}
	defer bootstrap.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if tc := cfg.Monitoring.Tracing; tc.Enable && tc.ExportEndpoint != "" {
		tp, err := tracing.InitTracer(tracing.OTelConfig{
			ServiceName:    tc.ServiceName,
			ExportEndpoint: tc.ExportEndpoint,
			Insecure:       tc.Insecure,
		})
		if err != nil {
			bootstrap.Logger.Warn("链路追踪初始化失败", "error", err)
		} else {
			defer func() { _ = tp.Shutdown(context.Background()) }()
		}
	}

	store, err := bootstrap.OpenConsoleMemory(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "打开记忆存储失败: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	c := console.New(bootstrap.Requester, bootstrap.Scheduler, bootstrap.Lookup, store,
		console.WithSchedulePath(cfg.Schedule.File),
		console.WithMaxResources(cfg.Search.MaxResults),
		console.WithLogger(bootstrap.Logger),
	)
	if err := c.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "HATA: %v\n", err)
		os.Exit(1)
	}
}

func runConfig() {
	cfg, err := config.LoadAPIConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("api.host=%s\n", cfg.API.Host)
	fmt.Printf("api.port=%d\n", cfg.API.Port)
	fmt.Printf("model.provider=%s\n", cfg.Model.Provider)
	fmt.Printf("model.name=%s\n", cfg.Model.Name)
	fmt.Printf("memory.type=%s\n", cfg.Memory.Type)
	fmt.Printf("search.provider=%s\n", cfg.Search.Provider)
}

func runHealth() {
	h, err := getHealth()
	if err != nil {
		fmt.Fprintf(os.Stderr, "健康检查失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("status=%v api_key_configured=%v\n", h["status"], h["api_key_configured"])
}

func runChat(args []string) {
	userID := os.Getenv("CAREER_USER_ID")
	if len(args) > 0 {
		userID = args[0]
	}
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		msg := strings.TrimSpace(line)
		if msg == "" {
			continue
		}
		if msg == "exit" || msg == "quit" {
			break
		}
		reply, err := postChat(msg, userID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "发送失败: %v\n", err)
			continue
		}
		fmt.Println(reply.Response)
		if len(reply.Schedule) > 0 {
			out, _ := json.MarshalIndent(reply.Schedule, "", "  ")
			fmt.Printf("schedule: %s\n", out)
		}
		for i, r := range reply.Resources {
			fmt.Printf("  %d. %v - %v\n", i+1, r["title"], r["href"])
		}
	}
}

func runStream(message string) {
	err := postChatStream(message, os.Getenv("CAREER_USER_ID"), func(text string) {
		fmt.Print(text)
	})
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "流式请求失败: %v\n", err)
		os.Exit(1)
	}
}
