package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/example/rolebot/internal/ports/primary"
)

// Embed colors.
const (
	colorBlue = 0x3498db
	colorRed  = 0xe74c3c
)

// listChunkLimit keeps each listing message safely under Discord's 2000-char cap.
const listChunkLimit = 1900

// Component custom IDs. Role buttons carry the role ID after the prefix.
const (
	customIDCodeButton = "code_button"
	customIDCodeModal  = "code_modal"
	customIDCodeInput  = "code_input"
	customIDRolePrefix = "role_toggle:"
)

// Discord limits on message components.
const (
	buttonsPerRow = 5
	maxButtons    = 25
)

// Embed titles.
const (
	titleGrant       = "身份組派發結果"
	titleCreateList  = "清單建立結果"
	titleAddEntry    = "新增組合結果"
	titleRemoveEntry = "刪除組合結果"
	titleDeleteList  = "刪除清單結果"
	titleBuildCode   = "輸入代碼"
	titleCheckList   = "查看清單"
	titleBuild       = "建立按鈕結果"
	titleToggle      = "身份組操作"
	titleRedeem      = "代碼處理結果"
	titleError       = "錯誤"
)

// User-facing messages.
const (
	msgAdminOnly       = "此指令限管理員使用。"
	msgNoLists         = "目前沒有任何清單。"
	msgCodeNotFound    = "代碼不存在"
	msgDuplicateCode   = "代碼已存在於其他清單中。"
	msgMalformedEntry  = "無效輸入。格式應該是 '身份組:代碼'。"
	msgNoValidRoles    = "沒有有效的身份組。"
	msgCodePanel       = "請點擊按鈕並輸入代碼以領取身份組。"
	msgRolePanel       = "請點擊按鈕領取或移除身份組"
	msgSendingList     = "正在發送清單..."
	msgFileTooLarge    = "檔案超過 1 MiB 上限。"
	msgCodeLabel       = "請輸入代碼"
	msgCodePlaceholder = "在這裡輸入代碼..."
)

func embed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: title, Description: description, Color: colorBlue}
}

func errorEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: titleError, Description: description, Color: colorRed}
}

func invalidRoleMessage(names ...string) string {
	return "無效的身份組: " + strings.Join(names, ", ")
}

func grantSummary(resp *primary.GrantRoleResponse, roleName string) string {
	msg := fmt.Sprintf("已成功將身份組 '%s' 派發給 %d 位用戶。", roleName, resp.SuccessCount)
	if len(resp.Failed) > 0 {
		msg += "\n以下用戶未能派發身份組: " + strings.Join(resp.Failed, ", ")
	}
	return msg
}

func toggleMessage(result primary.ToggleResult, roleName string) string {
	if result == primary.ToggleRemoved {
		return fmt.Sprintf("已移除「%s」身份組！", roleName)
	}
	return fmt.Sprintf("已領取「%s」身份組！", roleName)
}

func entryLine(e *primary.Entry) string {
	return fmt.Sprintf("%d. %s -> 代碼: %s", e.Sequence, e.Role.Name, e.Code)
}

// chunkLines packs header and lines into messages no longer than limit,
// never splitting a line. A single over-long line gets a message of its own.
func chunkLines(header string, lines []string, limit int) []string {
	var (
		parts   []string
		current strings.Builder
	)
	current.WriteString(header)
	for _, line := range lines {
		if current.Len() > 0 && current.Len()+len(line)+1 > limit {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteString(line)
		current.WriteByte('\n')
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func codePanelComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: titleBuildCode, Style: discordgo.PrimaryButton, CustomID: customIDCodeButton},
		}},
	}
}

func codeModal() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: customIDCodeModal,
		Title:    titleBuildCode,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    customIDCodeInput,
					Label:       msgCodeLabel,
					Style:       discordgo.TextInputShort,
					Placeholder: msgCodePlaceholder,
					Required:    true,
				},
			}},
		},
	}
}

// rolePanelComponents lays role buttons out in rows of five.
func rolePanelComponents(roles []primary.Role) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	for start := 0; start < len(roles); start += buttonsPerRow {
		end := min(start+buttonsPerRow, len(roles))
		var buttons []discordgo.MessageComponent
		for _, r := range roles[start:end] {
			buttons = append(buttons, discordgo.Button{
				Label:    r.Name,
				Style:    discordgo.PrimaryButton,
				CustomID: customIDRolePrefix + r.ID,
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}

// modalValue extracts a text input's value from submitted modal components.
func modalValue(components []discordgo.MessageComponent, customID string) string {
	for _, c := range components {
		var inner []discordgo.MessageComponent
		switch row := c.(type) {
		case *discordgo.ActionsRow:
			inner = row.Components
		case discordgo.ActionsRow:
			inner = row.Components
		}
		for _, ic := range inner {
			switch in := ic.(type) {
			case *discordgo.TextInput:
				if in.CustomID == customID {
					return in.Value
				}
			case discordgo.TextInput:
				if in.CustomID == customID {
					return in.Value
				}
			}
		}
	}
	return ""
}
