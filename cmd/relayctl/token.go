package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xh-polaris/chat-relay/biz/domain/token"
)

// tokenCmd 使用与服务端相同的密钥在本地签发令牌, 仅用于联调
func tokenCmd() *cobra.Command {
	var secret, uid, email string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a socket token signed with the given secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := token.New(secret, token.DefaultExpire)
			if err != nil {
				return err
			}
			tok, err := s.Issue(uid, email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret, same as Auth.SecretKey")
	cmd.Flags().StringVar(&uid, "uid", "", "user id")
	cmd.Flags().StringVar(&email, "email", "", "user email")
	_ = cmd.MarkFlagRequired("secret")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}
