package consts

const (
	MimePrefixImage = "image/"
)

// 上传图片的长边上限，超过则等比缩放
const MaxImageEdge = 1600
