package transfer

// GamePush game 节点推送给 connector 节点的客户端消息
const GamePush = "game.push"

// ConnectorKick 同一玩家在其他节点建立了新连接，要求旧节点断开
const ConnectorKick = "connector.kick"
