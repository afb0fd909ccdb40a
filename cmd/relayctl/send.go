package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"github.com/xh-polaris/chat-relay/biz/application/dto/core_api"
	"github.com/xh-polaris/chat-relay/biz/domain/hub"
	"github.com/xh-polaris/chat-relay/biz/infra/cst"
	"github.com/xh-polaris/chat-relay/pkg/wsx"
)

type connFlags struct {
	url   string
	token string
}

func (f *connFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "url", "ws://localhost:8080/ws", "relay websocket endpoint")
	cmd.Flags().StringVar(&f.token, "token", "", "socket token")
	_ = cmd.MarkFlagRequired("token")
}

func sendCmd() *cobra.Command {
	var cf connFlags
	var cid, content string
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one message and print the ack and any events received",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), wait)
			defer cancel()
			conn, _, err := wsx.Dial(ctx, cf.url, cf.token)
			if err != nil {
				return fmt.Errorf("dial %s: %w", cf.url, err)
			}
			defer conn.Close()

			id := uuid.NewString()
			frame, err := hub.Encode(cst.EventMessageSend, id, &core_api.SendMessageReq{ConversationId: cid, Content: content})
			if err != nil {
				return err
			}
			if err = conn.WriteMessage(gws.TextMessage, frame); err != nil {
				return err
			}
			err = printFrames(ctx, conn, cmd.OutOrStdout(), func(f *hub.Frame) bool {
				return f.Type == cst.EventMessageSend+cst.EventAckSuffix && f.Id == id
			})
			if err == nil && ctx.Err() != nil {
				return errors.New("no ack received before timeout")
			}
			return err
		},
	}
	cf.bind(cmd)
	cmd.Flags().StringVar(&cid, "conversation", "", "conversation id")
	cmd.Flags().StringVar(&content, "content", "", "message content")
	cmd.Flags().DurationVar(&wait, "wait", 5*time.Second, "how long to wait for the ack")
	_ = cmd.MarkFlagRequired("conversation")
	return cmd
}

func listenCmd() *cobra.Command {
	var cf connFlags
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Attach and print presence and message events until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			conn, _, err := wsx.Dial(ctx, cf.url, cf.token)
			if err != nil {
				return fmt.Errorf("dial %s: %w", cf.url, err)
			}
			defer conn.Close()
			return printFrames(ctx, conn, cmd.OutOrStdout(), nil)
		},
	}
	cf.bind(cmd)
	return cmd
}

// printFrames 打印收到的每一帧, done返回true或ctx结束时退出
func printFrames(ctx context.Context, conn *gws.Conn, w io.Writer, done func(*hub.Frame) bool) error {
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		fmt.Fprintln(w, string(data))
		f, err := hub.Decode(data)
		if err != nil {
			continue
		}
		if done != nil && done(f) {
			return nil
		}
	}
}
