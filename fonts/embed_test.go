package fonts

import (
	"bytes"
	"testing"
)

func TestLoadBuiltin(t *testing.T) {
	for _, name := range append(Names(), "embed:Bold") {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("加载 %s 失败: %v", name, err)
		}
		// TrueType 文件以 0x00010000 开头
		if !bytes.HasPrefix(data, []byte{0, 1, 0, 0}) {
			t.Fatalf("%s 不是 TrueType 字体", name)
		}
	}
	if _, err := Load("comic-sans"); err == nil {
		t.Fatalf("未知字体应报错")
	}
}
