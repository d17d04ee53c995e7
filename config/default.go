package config

import (
	_ "embed"
)

// DefaultConfigYAML 嵌入的默认配置，外部配置文件缺失时也能直接启动
//
//go:embed config.yaml
var DefaultConfigYAML []byte
