package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// 登录响应结构
type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
	User    struct {
		ID       int64  `json:"id"`
		Nickname string `json:"nickname"`
	} `json:"user"`
}

// 推送事件结构
type pushEvent struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

func main() {
	var (
		userAPIURL   = flag.String("userapi", "http://localhost:21001/api/v1/users", "用户服务API地址")
		friendAPIURL = flag.String("friendapi", "http://localhost:21002/api/v1/friends", "好友服务API地址")
		wsURL        = flag.String("wsurl", "ws://localhost:21003/ws", "连接网关地址")
	)
	flag.Parse()

	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("🔐 登录")
	fmt.Print("邮箱: ")
	scanner.Scan()
	email := strings.TrimSpace(scanner.Text())
	fmt.Print("密码: ")
	scanner.Scan()
	password := strings.TrimSpace(scanner.Text())

	login := loginUser(*userAPIURL, email, password)
	if login == nil {
		log.Fatal("登录失败，程序退出")
	}
	fmt.Printf("✅ 登录成功 - 用户: %s (ID: %d)\n", login.User.Nickname, login.User.ID)

	conn := connectWebSocket(*wsURL, login.Token)
	defer conn.Close()
	go receiveEvents(conn)

	fmt.Println("\n📱 好友客户端已启动！")
	fmt.Println("📋 命令: add <昵称> | list | received | accept <申请ID> | reject <申请ID> | exit")
	fmt.Println(strings.Repeat("-", 50))

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "exit":
			fmt.Println("👋 再见")
			return
		case "add":
			if len(fields) != 2 {
				fmt.Println("用法: add <昵称>")
				continue
			}
			callAPI(login.Token, http.MethodPost, *friendAPIURL+"/request",
				map[string]interface{}{"target_nickname": fields[1]})
		case "list":
			callAPI(login.Token, http.MethodGet, *friendAPIURL+"/list", nil)
		case "received":
			callAPI(login.Token, http.MethodGet, *friendAPIURL+"/received-requests", nil)
		case "accept", "reject":
			if len(fields) != 2 {
				fmt.Printf("用法: %s <申请ID>\n", fields[0])
				continue
			}
			requestID, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				fmt.Println("❌ 申请ID必须是数字")
				continue
			}
			callAPI(login.Token, http.MethodPost, *friendAPIURL+"/respond",
				map[string]interface{}{"request_id": requestID, "action": fields[0]})
		default:
			fmt.Println("❌ 未知命令: add <昵称> | list | received | accept <申请ID> | reject <申请ID> | exit")
		}
	}
}

// loginUser 调用用户服务登录
func loginUser(apiURL, email, password string) *loginResponse {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := http.Post(apiURL+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Printf("❌ 登录请求失败: %v\n", err)
		return nil
	}
	defer resp.Body.Close()

	var result loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || !result.Success {
		fmt.Printf("❌ 登录失败: %s\n", result.Message)
		return nil
	}
	return &result
}

// connectWebSocket 建立到连接网关的WebSocket连接
func connectWebSocket(wsURL, token string) *websocket.Conn {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(fmt.Sprintf("%s?token=%s", wsURL, token), nil)
	if err != nil {
		log.Fatalf("WebSocket连接失败: %v", err)
	}
	fmt.Println("🔌 WebSocket已连接，等待实时推送...")
	return conn
}

// receiveEvents 接收并打印推送事件
func receiveEvents(conn *websocket.Conn) {
	for {
		var event pushEvent
		if err := conn.ReadJSON(&event); err != nil {
			fmt.Printf("\n🔌 连接断开: %v\n", err)
			return
		}
		fmt.Printf("\n🔔 [%s] %s\n> ", event.Type, string(event.Content))
	}
}

// callAPI 携带token调用HTTP接口并打印响应
func callAPI(token, method, url string, payload interface{}) {
	var body *bytes.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		fmt.Printf("❌ 构造请求失败: %v\n", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("❌ 请求失败: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var pretty bytes.Buffer
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err == nil {
		json.Indent(&pretty, raw, "", "  ")
		fmt.Printf("📨 [%d] %s\n", resp.StatusCode, pretty.String())
	} else {
		fmt.Printf("📨 [%d]\n", resp.StatusCode)
	}
}
