package template

// ChatFormat turns a prompt and system message into the single string a
// completion-style model expects.
type ChatFormat struct {
	Name string
	// Template is Go template text. It sees either .messages (a list of
	// role/content maps) or .system and .prompt.
	Template string
	// Stop lists stop sequences the format needs.
	Stop []string
	// Messages selects the .messages form.
	Messages bool
}

var chatFormats = map[string]ChatFormat{
	"default": {
		Name:     "default",
		Template: "{{range .messages}}<|im_start|>{{.role}}\n{{.content}}<|im_end|>\n{{end}}",
		Messages: true,
	},
	"llama": {
		Name:     "llama",
		Template: "<s>[INST] {{if .system}}<<SYS>>\n{{.system}}\n<</SYS>>\n\n{{end}}{{.prompt}} [/INST] ",
		Stop:     []string{"</s>"},
	},
}

// LookupChatFormat returns the built-in chat format called name.
func LookupChatFormat(name string) (ChatFormat, bool) {
	f, ok := chatFormats[name]
	return f, ok
}

// ApplyChat renders prompt and system through format. With
// addGenerationPrompt the result ends with the opening of the assistant turn.
func (e *Engine) ApplyChat(format ChatFormat, prompt, system string, addGenerationPrompt bool) (string, error) {
	var vars map[string]any
	if format.Messages {
		var messages []map[string]string
		if system != "" {
			messages = append(messages, map[string]string{"role": "system", "content": system})
		}
		messages = append(messages, map[string]string{"role": "user", "content": prompt})
		vars = map[string]any{"messages": messages}
	} else {
		vars = map[string]any{"system": system, "prompt": prompt}
	}

	out, err := e.Render(format.Template, vars)
	if err != nil {
		return "", err
	}
	if addGenerationPrompt && format.Messages {
		out += "<|im_start|>assistant\n"
	}
	return out, nil
}
