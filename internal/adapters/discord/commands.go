package discord

import "github.com/bwmarrin/discordgo"

// Slash command names.
const (
	cmdGiveRole        = "give_role"
	cmdGiveRoleFromCSV = "give_role_from_csv"
	cmdCreateList      = "create_list"
	cmdAddEntry        = "add_entry"
	cmdRemoveEntry     = "remove_entry"
	cmdDeleteList      = "delete_list"
	cmdBuildCode       = "build_code"
	cmdCheckList       = "check_list"
	cmdBuild           = "build"
)

// Option names.
const (
	optRoleName    = "role_name"
	optRoleNames   = "role_names"
	optUsernames   = "usernames"
	optFile        = "file"
	optListName    = "list_name"
	optEntry       = "entry"
	optEntryNumber = "entry_number"
)

var adminPermission int64 = discordgo.PermissionAdministrator

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

// Commands returns the slash command definitions registered with Discord.
// Every command is hidden from non-administrators by default.
func Commands() []*discordgo.ApplicationCommand {
	cmds := []*discordgo.ApplicationCommand{
		{
			Name:        cmdGiveRole,
			Description: "派發身份組到指定的DC帳號(使用者名稱)",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption(optRoleName, "身份組名稱", true),
				stringOption(optUsernames, "使用者名稱，以逗號分隔", true),
			},
		},
		{
			Name:        cmdGiveRoleFromCSV,
			Description: "從CSV派發身份組到指定的DC帳號",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption(optRoleName, "身份組名稱", true),
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        optFile,
					Description: "第一欄為使用者名稱的CSV檔",
					Required:    true,
				},
			},
		},
		{
			Name:        cmdCreateList,
			Description: "建立身份組和代碼的清單",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption(optListName, "清單名稱", true),
			},
		},
		{
			Name:        cmdAddEntry,
			Description: "新增身份組和代碼的組合",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption(optListName, "清單名稱", true),
				stringOption(optEntry, "身份組:代碼", true),
			},
		},
		{
			Name:        cmdRemoveEntry,
			Description: "刪除身份組和代碼的組合",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption(optListName, "清單名稱", true),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        optEntryNumber,
					Description: "組合編號",
					Required:    true,
				},
			},
		},
		{
			Name:        cmdDeleteList,
			Description: "刪除清單",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption(optListName, "清單名稱", true),
			},
		},
		{
			Name:        cmdBuildCode,
			Description: "用代碼建立按鈕",
		},
		{
			Name:        cmdCheckList,
			Description: "查看清單",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption(optListName, "清單名稱", false),
			},
		},
		{
			Name:        cmdBuild,
			Description: "建立領取身份組按鈕",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption(optRoleNames, "身份組名稱，以逗號分隔", true),
			},
		},
	}

	for _, c := range cmds {
		c.DefaultMemberPermissions = &adminPermission
	}
	return cmds
}

// commandOptions indexes an invocation's options by name.
type commandOptions map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionsOf(data discordgo.ApplicationCommandInteractionData) commandOptions {
	opts := make(commandOptions, len(data.Options))
	for _, o := range data.Options {
		opts[o.Name] = o
	}
	return opts
}

func (o commandOptions) str(name string) string {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionString {
		return opt.StringValue()
	}
	return ""
}

func (o commandOptions) integer(name string) int {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionInteger {
		return int(opt.IntValue())
	}
	return 0
}

// attachmentID returns the attachment ID referenced by an attachment option.
func (o commandOptions) attachmentID(name string) string {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionAttachment {
		id, _ := opt.Value.(string)
		return id
	}
	return ""
}
