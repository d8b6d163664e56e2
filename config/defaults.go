package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/deskmate",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Provider: ProviderConfig{
			Type:          "openai",
			ChatModel:     "gpt-4.1-2025-04-14",
			AnalysisModel: "gpt-4o",
		},
		Memory: MemoryConfig{
			HistoryWindow:  10,
			AnalysisWindow: 50,
		},
		Limits: LimitsConfig{
			PrimaryMaxTokens:    1000,
			CommentaryMaxTokens: 500,
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8347",
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# Deskmate System Configuration
# Location: ~/.config/deskmate/settings.toml
# This file uses TOML format: https://toml.io

# Directory where conversation history, prompts and user config are stored
data_directory = "~/.local/share/deskmate"
`
}

func GenerateUserConfigTemplate() string {
	return `# Deskmate User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[provider]
# Completion provider: "openai", "anthropic" or "ollama"
type = "openai"

# Override the provider base URL (optional)
base_url = ""

# Model used for chat turns and persona commentary
chat_model = "gpt-4.1-2025-04-14"

# Model used for the deep-analysis pass
analysis_model = "gpt-4o"

[memory]
# How many recent turns are folded into each chat request
history_window = 10

# How many turns the deep-analysis pass reads
analysis_window = 50

[limits]
# Token budget for the primary answer
primary_max_tokens = 1000

# Token budget for the persona commentary
commentary_max_tokens = 500

[server]
# Local address the shell bridge listens on
listen = "127.0.0.1:8347"
`
}
