package provider

// Catalog is the full universe of backend names the relay knows how to
// talk to. The registry builds its working set from this map; names not
// listed here cannot be registered. Base URLs point at public free-tier
// endpoints, so availability varies day to day.
func Catalog() map[string]Settings {
	defs := []Settings{
		// The Qwen spaces carry the heaviest models and form the default
		// backup chain.
		{Name: "Qwen_Qwen_2_72B", Family: "gradio", BaseURL: "https://qwen-qwen2-72b-instruct.hf.space", DefaultModel: "qwen-2.5-72b", Tier: TierPrimary},
		{Name: "Qwen_Qwen_2_5_Max", Family: "gradio", BaseURL: "https://qwen-qwen2-5-max-demo.hf.space", DefaultModel: "qwen-max", Tier: TierPrimary},
		{Name: "Qwen_Qwen_2_5", Family: "gradio", BaseURL: "https://qwen-qwen2-5.hf.space", DefaultModel: "qwen-2.5", Tier: TierPrimary},
		{Name: "Qwen_Qwen_2_5M", Family: "gradio", BaseURL: "https://qwen-qwen2-5-1m-demo.hf.space", DefaultModel: "qwen-2.5", Tier: TierPrimary},

		{Name: "DeepInfra", Family: "openaic", BaseURL: "https://api.deepinfra.com/v1/openai", DefaultModel: "gpt-4o-mini", Tier: TierPrimary},
		{Name: "You", Family: "openaic", BaseURL: "https://api.you.com/v1", DefaultModel: "gpt-4o-mini", Tier: TierPrimary},

		{Name: "HuggingChat", Family: "openaic", BaseURL: "https://huggingface.co/api/chat", DefaultModel: "llama-3.1-70b", Tier: TierSecondary},
		{Name: "Gemini", Family: "openaic", BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai", DefaultModel: "gemini-pro", Tier: TierSecondary, APIKeyEnv: "GEMINI_API_KEY"},
		{Name: "Phind", Family: "openaic", BaseURL: "https://https.extension.phind.com/agent", DefaultModel: "phind-70b", Tier: TierSecondary},
		{Name: "Liaobots", Family: "openaic", BaseURL: "https://liaobots.work/v1", DefaultModel: "gpt-4o-mini", Tier: TierSecondary},
		{Name: "ChatGpt", Family: "openaic", BaseURL: "https://chatgpt.com/backend-api", DefaultModel: "gpt-4o-mini", Tier: TierSecondary},

		{Name: "FreeGpt", Family: "openaic", BaseURL: "https://freegptsnav.aifree.site", DefaultModel: "gpt-4o-mini", Tier: TierFallback},
		{Name: "GptGo", Family: "openaic", BaseURL: "https://gptgo.ai/api", DefaultModel: "gpt-3.5-turbo", Tier: TierFallback},
		{Name: "Blackbox", Family: "openaic", BaseURL: "https://www.blackbox.ai/api", DefaultModel: "blackbox", Tier: TierFallback},

		// Llama-capable backends; the registry promotes anything with
		// "llama" in the name to the primary tier.
		{Name: "HuggingChat_Llama_3_70B", Family: "openaic", BaseURL: "https://huggingface.co/api/chat", DefaultModel: "llama-3-70b-instruct", Tier: TierSecondary},
		{Name: "DeepInfra_Llama_3_1", Family: "openaic", BaseURL: "https://api.deepinfra.com/v1/openai", DefaultModel: "meta-llama/Meta-Llama-3.1-70B-Instruct", Tier: TierSecondary},
		{Name: "Ollama_Llama", Family: "openaic", BaseURL: "http://localhost:11434/v1", DefaultModel: "llama3.1", Tier: TierFallback},
	}

	out := make(map[string]Settings, len(defs))
	for _, d := range defs {
		out[d.Name] = d
	}
	return out
}
