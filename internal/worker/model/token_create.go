package model

import "time"

// TokenCreateEvent launchpad TokenCreate 事件解码结果，构造后不再修改
type TokenCreateEvent struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement:true" json:"-"`
	TokenAddress    string    `gorm:"column:token_address;type:varchar(64);not null;index" json:"tokenAddress"`
	Name            string    `gorm:"column:name;type:varchar(256)" json:"name"`
	Symbol          string    `gorm:"column:symbol;type:varchar(128)" json:"symbol"`
	Creator         string    `gorm:"column:creator;type:varchar(64);not null;index" json:"creator"`
	Timestamp       time.Time `gorm:"column:timestamp;not null" json:"timestamp"` // 接收时间
	TransactionHash string    `gorm:"column:transaction_hash;type:varchar(80);not null;uniqueIndex:uk_tx_log" json:"transactionHash"`
	LogIndex        uint      `gorm:"column:log_index;not null;uniqueIndex:uk_tx_log" json:"logIndex"`
	BlockNumber     uint64    `gorm:"column:block_number" json:"blockNumber"`
	InitialSupply   string    `gorm:"column:initial_supply;type:varchar(80)" json:"initialSupply"`
	RequestID       string    `gorm:"column:request_id;type:varchar(80)" json:"requestId"`
	LaunchTime      int64     `gorm:"column:launch_time" json:"launchTime"`
	LaunchFee       string    `gorm:"column:launch_fee;type:varchar(80)" json:"launchFee"`
}

func (*TokenCreateEvent) TableName() string {
	return "t_sniper_token"
}

// WhitelistEntry 可信创建者
type WhitelistEntry struct {
	Creator string `gorm:"column:creator;type:varchar(64);primaryKey" json:"creator"`
}
