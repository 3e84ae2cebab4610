package socket

import "fmt"

// ChannelKind — вид подписки.
type ChannelKind int

const (
	ChanServerMessages ChannelKind = iota
	ChanUserCPU
	ChanUserMessages
	ChanUserConversation
	ChanUserCredits
	ChanUserMemoryPath
	ChanUserConsole
	ChanUserActiveBranch
	ChanMapRoomUpdates
	ChanRoomUpdates
)

// Channel — канал подписки. Создаётся только конструкторами ниже.
type Channel struct {
	kind         ChannelKind
	userID       string
	targetUserID string
	path         string
	room         string
}

// ServerMessages — сообщения сервера.
func ServerMessages() Channel { return Channel{kind: ChanServerMessages} }

// UserCPU — CPU и память пользователя, каждый тик.
func UserCPU(userID string) Channel { return Channel{kind: ChanUserCPU, userID: userID} }

// UserMessages — уведомления о новых личных сообщениях.
func UserMessages(userID string) Channel { return Channel{kind: ChanUserMessages, userID: userID} }

// UserConversation — новые сообщения в переписке с конкретным пользователем.
func UserConversation(userID, targetUserID string) Channel {
	return Channel{kind: ChanUserConversation, userID: userID, targetUserID: targetUserID}
}

// UserCredits — изменения количества кредитов.
func UserCredits(userID string) Channel { return Channel{kind: ChanUserCredits, userID: userID} }

// UserMemoryPath — изменения по пути в Memory (через точку).
func UserMemoryPath(userID, path string) Channel {
	return Channel{kind: ChanUserMemoryPath, userID: userID, path: path}
}

// UserConsole — вывод консоли.
func UserConsole(userID string) Channel { return Channel{kind: ChanUserConsole, userID: userID} }

// UserActiveBranch — смена активной ветки кода.
func UserActiveBranch(userID string) Channel {
	return Channel{kind: ChanUserActiveBranch, userID: userID}
}

// MapRoomUpdates — упрощённый вид комнаты для карты.
func MapRoomUpdates(room string) Channel { return Channel{kind: ChanMapRoomUpdates, room: room} }

// RoomUpdates — все объекты комнаты.
//
// Сервер держит не больше двух таких подписок на аккаунт; какие две получат
// тик при большем количестве — не определено. Клиент это не ограничивает.
func RoomUpdates(room string) Channel { return Channel{kind: ChanRoomUpdates, room: room} }

func (c Channel) Kind() ChannelKind { return c.kind }

// Topic — строка канала для subscribe/unsubscribe.
func (c Channel) Topic() string {
	switch c.kind {
	case ChanServerMessages:
		return "server-message"
	case ChanUserCPU:
		return "user:" + c.userID + "/cpu"
	case ChanUserMessages:
		return "user:" + c.userID + "/newMessage"
	case ChanUserConversation:
		return "user:" + c.userID + "/message:" + c.targetUserID
	case ChanUserCredits:
		return "user:" + c.userID + "/money"
	case ChanUserMemoryPath:
		return "user:" + c.userID + "/memory/" + c.path
	case ChanUserConsole:
		return "user:" + c.userID + "/console"
	case ChanUserActiveBranch:
		return "user:" + c.userID + "/set-active-branch"
	case ChanMapRoomUpdates:
		return "roomMap2:" + c.room
	case ChanRoomUpdates:
		return "room:" + c.room
	}
	panic(fmt.Sprintf("socket: unknown channel kind %d", int(c.kind)))
}

func (c Channel) String() string { return c.Topic() }
