package database

// Collection names as constants to prevent typos
const (
	UsersCollection         = "users"
	FoldersCollection       = "folders"
	FilesCollection         = "files"
	FileAccessCollection    = "file_access"
	FolderAccessCollection  = "folder_access"
	ShareLinksCollection    = "share_links"
	NotificationsCollection = "notifications"
)
