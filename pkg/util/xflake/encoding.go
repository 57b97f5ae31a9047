package xflake

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Encoding 打包值的文本编码。
type Encoding string

// 支持的编码。
//
// 设计决策: 编解码委托给 bwmarrin/snowflake。它的默认布局同为 41+10+12，
// 打包值可直接互转；这里只借用其字符表与编解码，不使用它的生成器和全局 Epoch。
const (
	EncodingDecimal Encoding = "decimal"
	EncodingBase2   Encoding = "base2"
	EncodingBase32  Encoding = "base32"
	EncodingBase36  Encoding = "base36"
	EncodingBase58  Encoding = "base58"
	EncodingBase64  Encoding = "base64"
)

// Encodings 返回所有支持的编码。
func Encodings() []Encoding {
	return []Encoding{
		EncodingDecimal, EncodingBase2, EncodingBase32,
		EncodingBase36, EncodingBase58, EncodingBase64,
	}
}

// ParseEncoding 解析编码名称（大小写不敏感，空串视为 decimal）。
func ParseEncoding(name string) (Encoding, error) {
	n := Encoding(strings.ToLower(strings.TrimSpace(name)))
	if n == "" {
		return EncodingDecimal, nil
	}
	for _, e := range Encodings() {
		if e == n {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: unknown encoding %q", ErrInvalidEncoding, name)
}

// Format 将打包值编码为字符串。
func (s Snowflake) Format(enc Encoding) (string, error) {
	return FormatID(s.Value(), enc)
}

// FormatID 将打包值按指定编码输出。
func FormatID(id int64, enc Encoding) (string, error) {
	sid := snowflake.ParseInt64(id)
	switch enc {
	case EncodingDecimal, "":
		return sid.String(), nil
	case EncodingBase2:
		return sid.Base2(), nil
	case EncodingBase32:
		if id < 0 {
			return "", negativeIDError(id, enc)
		}
		return sid.Base32(), nil
	case EncodingBase36:
		return sid.Base36(), nil
	case EncodingBase58:
		if id < 0 {
			return "", negativeIDError(id, enc)
		}
		return sid.Base58(), nil
	case EncodingBase64:
		return sid.Base64(), nil
	default:
		return "", fmt.Errorf("%w: unknown encoding %q", ErrInvalidEncoding, enc)
	}
}

// base32/base58 字符表没有负号。
func negativeIDError(id int64, enc Encoding) error {
	return fmt.Errorf("%w: negative id %d has no %s form", ErrInvalidEncoding, id, enc)
}

// ParseString 按指定编码解析字符串并宽松解码（语义同 [Parse]）。
func ParseString(s string, enc Encoding, epoch int64) (Snowflake, error) {
	id, err := decodeID(s, enc)
	if err != nil {
		return Snowflake{}, err
	}
	return Parse(id, epoch), nil
}

func decodeID(s string, enc Encoding) (int64, error) {
	var (
		sid snowflake.ID
		err error
	)
	switch enc {
	case EncodingDecimal, "":
		sid, err = snowflake.ParseString(s)
	case EncodingBase2:
		sid, err = snowflake.ParseBase2(s)
	case EncodingBase32:
		sid, err = snowflake.ParseBase32([]byte(s))
	case EncodingBase36:
		sid, err = snowflake.ParseBase36(s)
	case EncodingBase58:
		sid, err = snowflake.ParseBase58([]byte(s))
	case EncodingBase64:
		sid, err = snowflake.ParseBase64(s)
	default:
		return 0, fmt.Errorf("%w: unknown encoding %q", ErrInvalidEncoding, enc)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %w", ErrInvalidEncoding, enc, s, err)
	}
	return sid.Int64(), nil
}
