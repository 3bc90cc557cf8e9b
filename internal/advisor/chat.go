package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"shoplens/internal/core"
	"shoplens/internal/llm"
	"shoplens/internal/videosearch"
)

const chatSearchMaxResults = 5

func chatTools() []*genai.Tool {
	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "navigate",
				Description: "Navigates the app to the given page path.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"path": {
							Type:        genai.TypeString,
							Description: "Target page path, e.g. /comparison",
						},
					},
					Required: []string{"path"},
				},
			},
			{
				Name:        "search_youtube_videos",
				Description: "Searches YouTube for videos matching the query and returns their titles, descriptions, and URLs.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {
							Type:        genai.TypeString,
							Description: "Search query, e.g. 'ワイヤレスイヤホン レビュー'",
						},
					},
					Required: []string{"query"},
				},
			},
		},
	}}
}

// Chat runs one turn of the shopping-advisor agent. The model may call
// the navigate tool, the video search tool, or both; tool results are
// fed back for a follow-up turn. Backend failures are absorbed into a
// fixed apology reply so the chat surface never errors.
func (a *Advisor) Chat(ctx context.Context, message, conversationID string) (core.ChatReply, error) {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	reply := core.ChatReply{
		ConversationID: conversationID,
		Timestamp:      time.Now().UTC(),
	}

	text, navigateTo, err := a.runChatTurn(ctx, message)
	if err != nil {
		a.log.Error("Chat turn failed", "error", err, "conversation_id", conversationID)
		reply.Message = chatErrorMessage
		return reply, nil
	}

	if text == "" && navigateTo != nil {
		text = fmt.Sprintf("%s に移動します。", *navigateTo)
	}

	reply.Message = text
	reply.NavigateTo = navigateTo
	return reply, nil
}

func (a *Advisor) runChatTurn(ctx context.Context, message string) (string, *string, error) {
	conv := a.text.StartConversation(a.models.Chat, chatTools())

	reply, err := conv.Send(ctx, fmt.Sprintf(chatPromptTemplate, message))
	if err != nil {
		return "", nil, err
	}

	var text strings.Builder
	text.WriteString(reply.Text)

	var navigateTo *string
	for _, call := range reply.ToolCalls {
		switch call.Name {
		case "navigate":
			if path, ok := call.Args["path"].(string); ok && path != "" {
				navigateTo = &path
			}
		case "search_youtube_videos":
			query, _ := call.Args["query"].(string)
			followUp, err := a.feedSearchResults(ctx, conv, query)
			if err != nil {
				return "", nil, err
			}
			text.WriteString(followUp.Text)
			for _, next := range followUp.ToolCalls {
				if next.Name == "navigate" {
					if path, ok := next.Args["path"].(string); ok && path != "" {
						navigateTo = &path
					}
				}
			}
		}
	}

	return text.String(), navigateTo, nil
}

// feedSearchResults executes a video search on the agent's behalf and
// returns the model's follow-up turn. An empty query or a failed search
// is reported back to the model rather than failing the chat.
func (a *Advisor) feedSearchResults(ctx context.Context, conv Conversation, query string) (llm.Reply, error) {
	var payload map[string]any
	videos, err := a.search.Search(ctx, query, videosearch.Config{
		MaxResults: chatSearchMaxResults,
		Region:     searchRegion,
		Language:   searchLanguage,
	})
	if err != nil {
		a.log.Warn("Chat video search failed", "error", err, "query", query)
		payload = map[string]any{"error": "video search is unavailable right now"}
	} else {
		items := make([]map[string]any, 0, len(videos))
		for _, v := range videos {
			items = append(items, map[string]any{
				"title":        v.Title,
				"videoId":      v.ID,
				"channelTitle": v.ChannelTitle,
			})
		}
		payload = map[string]any{"videos": items}
	}

	return conv.SendToolResult(ctx, "search_youtube_videos", map[string]any{"content": payload})
}
