package logs

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"
)

// 对go-zero logx的简单封装, 统一项目内的日志调用方式

func Info(v ...any) {
	logx.Info(v...)
}

func Infof(format string, v ...any) {
	logx.Infof(format, v...)
}

// warnTag go-zero没有warn级别, 以info级别加标记输出
const warnTag = "[warn] "

func Warnf(format string, v ...any) {
	logx.Infof(warnTag+format, v...)
}

func Error(v ...any) {
	logx.Error(v...)
}

func Errorf(format string, v ...any) {
	logx.Errorf(format, v...)
}

func CtxInfof(ctx context.Context, format string, v ...any) {
	logx.WithContext(ctx).Infof(format, v...)
}

func CtxWarnf(ctx context.Context, format string, v ...any) {
	logx.WithContext(ctx).Infof(warnTag+format, v...)
}

func CtxErrorf(ctx context.Context, format string, v ...any) {
	logx.WithContext(ctx).Errorf(format, v...)
}

// CtxErrorKVs 以字段形式记录错误
func CtxErrorKVs(ctx context.Context, msg string, kvs ...any) {
	fields := make([]logx.LogField, 0, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		fields = append(fields, logx.Field(fmt.Sprint(kvs[i]), kvs[i+1]))
	}
	logx.WithContext(ctx).Errorw(msg, fields...)
}
